package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

var (
	queryTop        int
	queryCandidates int
	queryMinMatches int
	queryJSON       bool
	queryRender     bool
)

var queryCmd = &cobra.Command{
	Use:   "query <image>",
	Short: "Find the scenes that look like an image",
	Long: `Finds the indexed scenes most similar to an image.

Candidates are the nearest scenes by embedding distance; they are reranked by
the number of local feature matches with the image and those below
--min-matches are dropped. Use "-" to read the image from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTop, "top", "n", domain.DefaultTopN, "maximum number of scenes")
	queryCmd.Flags().IntVarP(&queryCandidates, "candidates", "c", domain.DefaultCandidateCount,
		"nearest neighbours to rerank")
	queryCmd.Flags().IntVarP(&queryMinMatches, "min-matches", "m", domain.DefaultMinMatchCount,
		"minimum feature matches (negative disables)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	queryCmd.Flags().BoolVar(&queryRender, "render", false, "include matched frames as data URIs (JSON only)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	data, err := readQueryImage(cmd, args[0])
	if err != nil {
		return err
	}

	opts := queryOptions(cmd)

	result, err := queryService.Query(commandContext(cmd), data, opts)
	if err != nil {
		return explain(fmt.Errorf("query failed: %w", err))
	}

	if queryJSON {
		return outputQueryJSON(cmd, result)
	}
	outputQueryTable(cmd, result)
	return nil
}

// queryOptions takes flags the user set, and configured defaults otherwise.
func queryOptions(cmd *cobra.Command) domain.QueryOptions {
	opts := domain.QueryOptions{
		TopN:           queryTop,
		CandidateCount: queryCandidates,
		MinMatchCount:  queryMinMatches,
		Render:         queryRender && queryJSON,
	}
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			flags := cmd.Flags()
			if !flags.Changed("top") {
				opts.TopN = settings.Query.TopN
			}
			if !flags.Changed("candidates") {
				opts.CandidateCount = settings.Query.CandidateCount
			}
			if !flags.Changed("min-matches") {
				opts.MinMatchCount = settings.Query.MinMatchCount
			}
		}
	}
	if opts.MinMatchCount == 0 {
		// Zero would fall back to the default threshold.
		opts.MinMatchCount = -1
	}
	return opts
}

func readQueryImage(cmd *cobra.Command, arg string) ([]byte, error) {
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

type queryMatchJSON struct {
	Rank      int     `json:"rank"`
	VideoID   string  `json:"video_id"`
	Timestamp float64 `json:"timestamp"`
	Timecode  string  `json:"timecode"`
	Score     int64   `json:"score"`
	Distance  float64 `json:"distance"`
	Frame     string  `json:"frame,omitempty"`
}

type queryResultJSON struct {
	Outcome              string           `json:"outcome"`
	Message              string           `json:"message"`
	Matches              []queryMatchJSON `json:"matches"`
	CandidatesConsidered int              `json:"candidates_considered"`
	CandidatesScored     int              `json:"candidates_scored"`
	TookMS               int64            `json:"took_ms"`
}

func outputQueryJSON(cmd *cobra.Command, result *domain.QueryResult) error {
	out := queryResultJSON{
		Outcome:              string(result.Outcome),
		Message:              result.Outcome.Message(),
		Matches:              make([]queryMatchJSON, len(result.Matches)),
		CandidatesConsidered: result.CandidatesConsidered,
		CandidatesScored:     result.CandidatesScored,
		TookMS:               result.Took.Milliseconds(),
	}
	for i, m := range result.Matches {
		out.Matches[i] = queryMatchJSON{
			Rank:      i + 1,
			VideoID:   m.VideoID,
			Timestamp: m.Timestamp,
			Timecode:  domain.FormatTimestamp(m.Timestamp),
			Score:     m.Score,
			Distance:  m.ANNDistance,
			Frame:     m.Rendering,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryTable(cmd *cobra.Command, result *domain.QueryResult) {
	st := newStyles(cmd.OutOrStdout())
	if result.Empty() {
		cmd.Println(st.Warning(sentence(result.Outcome.Message())))
		return
	}

	cmd.Println(st.Title(fmt.Sprintf("Found %d matching scenes", len(result.Matches))) +
		st.Muted(fmt.Sprintf(" (%d candidates, %s)",
			result.CandidatesConsidered, result.Took.Round(time.Millisecond))))
	cmd.Println()
	for i, m := range result.Matches {
		cmd.Printf("  [%d] %s @ %s\n", i+1, st.Label(m.VideoID), domain.FormatTimestamp(m.Timestamp))
		cmd.Printf("      %s\n", st.Muted(fmt.Sprintf("matches: %d  distance: %.4f", m.Score, m.ANNDistance)))
	}
}

// sentence capitalises msg and ends it with a period.
func sentence(msg string) string {
	if msg == "" {
		return msg
	}
	if msg[0] >= 'a' && msg[0] <= 'z' {
		msg = string(msg[0]-'a'+'A') + msg[1:]
	}
	return msg + "."
}
