package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sceneseek/internal/adapters/driving/watch"
	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/logger"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [library-path]",
	Short: "Index new videos as they appear",
	Long: `Indexes the library once, then watches it and runs an incremental
index whenever videos are added. Runs start after changes have been quiet
for the debounce period, so large copies are indexed once. A path must be
the library or a directory inside it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before indexing")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if indexer == nil {
		return errors.New("index service not configured")
	}

	root := libraryPath
	if len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		return errors.New("no library path configured")
	}

	st := newStyles(cmd.OutOrStdout())
	w := newWatcher(root, watchDebounce, func(report *domain.IndexReport, err error) {
		if err != nil {
			cmd.PrintErrln(st.Failure("Indexing failed: " + err.Error()))
			return
		}
		cmd.Printf("%s +%d scenes (%d total)\n",
			st.Muted(time.Now().Format("15:04:05")), report.NewScenes, report.TotalScenes)
	})

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", root)
	return w.Run(commandContext(cmd))
}

func newWatcher(root string, debounce time.Duration, onReport func(*domain.IndexReport, error)) *watch.Watcher {
	return watch.New(watch.Config{
		Root:         root,
		Debounce:     debounce,
		IsVideo:      isVideo,
		IndexOnStart: true,
		OnReport: func(report *domain.IndexReport, err error) {
			if report != nil {
				logger.Debug("watch run %s: %d new scenes", report.RunID, report.NewScenes)
			}
			if onReport != nil {
				onReport(report, err)
			}
		},
	}, indexer)
}
