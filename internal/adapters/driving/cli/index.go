package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driving"
)

// progressInterval is how often index progress is polled.
var progressInterval = 500 * time.Millisecond

var historyLimit int

var indexCmd = &cobra.Command{
	Use:   "index [library-path]",
	Short: "Index new videos in the library",
	Long: `Detects scenes in every library video that is not indexed yet and
appends one embedding per scene to the index.

Runs are incremental: videos already in the catalog are never reprocessed.
Without a path the configured library is indexed. A path must be the
library or a directory inside it, so every video keeps one id.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

var indexHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent indexing runs",
	Args:  cobra.NoArgs,
	RunE:  runIndexHistory,
}

func init() {
	indexHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of runs")
	indexCmd.AddCommand(indexHistoryCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexer == nil {
		return errors.New("index service not configured")
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	st := newStyles(cmd.OutOrStdout())
	if path != "" {
		cmd.Printf("Indexing %s...\n", path)
	} else {
		cmd.Println("Indexing library...")
	}

	report, err := indexWithProgress(commandContext(cmd), cmd, indexer, path)
	if report != nil {
		printReport(cmd, st, report)
	}
	if err != nil {
		return explain(fmt.Errorf("indexing failed: %w", err))
	}
	return nil
}

// indexWithProgress runs indexing while displaying progress updates.
func indexWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	idx driving.Indexer,
	path string,
) (*domain.IndexReport, error) {
	type outcome struct {
		report *domain.IndexReport
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		report, err := idx.Index(ctx, path)
		done <- outcome{report, err}
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	printed := false
	lastDone := -1
	for {
		select {
		case o := <-done:
			if printed {
				cmd.Println()
			}
			return o.report, o.err
		case <-ticker.C:
			status := idx.Status()
			if !status.Running || status.VideosDone == lastDone {
				continue
			}
			cmd.Printf("\rProcessing... %d/%d videos, %d scenes",
				status.VideosDone, status.VideosTotal, status.ScenesExtracted)
			lastDone = status.VideosDone
			printed = true
		}
	}
}

func printReport(cmd *cobra.Command, st *styles, r *domain.IndexReport) {
	cmd.Println()
	cmd.Println(st.Title("Indexing run " + r.RunID))
	cmd.Printf("  %s %d discovered, %d new, %d processed, %d failed\n",
		st.Label("Videos:"), r.VideosDiscovered, r.VideosToProcess, r.VideosProcessed, r.VideosFailed)
	cmd.Printf("  %s %d added, %d skipped, %d total\n",
		st.Label("Scenes:"), r.NewScenes, r.ScenesSkipped, r.TotalScenes)
	cmd.Printf("  %s %s\n", st.Label("Took:"), r.Duration().Round(time.Millisecond))
	if !r.Success() {
		cmd.Printf("  %s %s\n", st.Label("Error:"), st.Failure(r.Error))
	}
}

func runIndexHistory(cmd *cobra.Command, _ []string) error {
	if indexer == nil {
		return errors.New("index service not configured")
	}

	runs, err := indexer.History(commandContext(cmd), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No indexing runs recorded.")
		return nil
	}

	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.Title("Recent indexing runs"))
	cmd.Println()
	for i := range runs {
		r := &runs[i]
		state := st.Success("ok")
		if !r.Success() {
			state = st.Failure("failed: " + r.Error)
		}
		cmd.Printf("  %s  %s  +%d scenes (%d total)  %s  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			st.Muted(shortID(r.RunID)),
			r.NewScenes, r.TotalScenes,
			r.Duration().Round(time.Millisecond),
			state)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
