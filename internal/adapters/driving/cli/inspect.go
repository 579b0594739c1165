package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

var inspectPreview int

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Describe the scene index",
	Long: `Shows the size and dimension of the scene index with the leading
components of its first vectors.`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectPreview, "preview", "p", 5, "number of vectors to preview")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	if inspector == nil {
		return errors.New("inspect service not configured")
	}

	stats, err := inspector.Stats(commandContext(cmd), inspectPreview)
	if err != nil {
		return explain(fmt.Errorf("inspect failed: %w", err))
	}

	st := newStyles(cmd.OutOrStdout())
	if !stats.Ready {
		cmd.Println(st.Warning("No index has been built yet."))
		cmd.Println("Run 'sceneseek index' to build one.")
		return nil
	}

	cmd.Println(st.Title("Scene index"))
	cmd.Printf("  %s %d\n", st.Label("Dimension:"), stats.Dimension)
	cmd.Printf("  %s %d\n", st.Label("Vectors:"), stats.Vectors)
	cmd.Printf("  %s %d\n", st.Label("Videos:"), stats.Videos)

	if len(stats.Preview) == 0 {
		return nil
	}
	cmd.Println()
	cmd.Printf("First %d vectors (%d components each):\n", len(stats.Preview), domain.PreviewComponents)
	for _, p := range stats.Preview {
		cmd.Printf("  #%d %s @ %s\n", p.SequenceIndex, p.VideoID, domain.FormatTimestamp(p.Timestamp))
		cmd.Printf("     %s\n", st.Muted(formatComponents(p.Components)))
	}
	return nil
}

func formatComponents(values []float32) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.4f", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
