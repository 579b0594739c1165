package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the library location, inference sidecar, video tools,
query defaults, scheduler and snapshot storage settings.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting. Lists are comma separated, for example:

  sceneseek settings set library.extensions mp4,mkv,webm
  sceneseek settings set query.min_match_count 15

Run 'sceneseek settings keys' to list every key.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	st := newStyles(cmd.OutOrStdout())
	section := func(name string) {
		cmd.Println(st.Title("[" + name + "]"))
	}
	field := func(name string, value any) {
		cmd.Printf("  %s %v\n", st.Label(name+":"), value)
	}

	cmd.Printf("Settings file: %s\n\n", settingsService.Path())

	section("Library")
	field("Path", settings.Library.Path)
	field("Extensions", strings.Join(settings.Library.Extensions, ", "))
	field("Data directory", settings.Storage.DataDir)
	cmd.Println()

	section("Inference")
	field("Base URL", settings.Inference.BaseURL)
	field("Model", settings.Inference.Model)
	field("Timeout", settings.Inference.Timeout)
	field("Requests per second", formatRate(settings.Inference.RequestsPerSecond))
	cmd.Println()

	section("Video")
	field("ffmpeg", settings.Video.FFmpegPath)
	field("ffprobe", settings.Video.FFprobePath)
	field("Scene threshold", settings.Video.SceneThreshold)
	field("Frame size", settings.Video.FrameSize)
	field("Indexing workers", settings.Indexing.Workers)
	cmd.Println()

	section("Query")
	field("Top N", settings.Query.TopN)
	field("Candidates", settings.Query.CandidateCount)
	field("Min matches", settings.Query.MinMatchCount)
	field("Workers", formatWorkers(settings.Query.Workers))
	cmd.Println()

	section("Scheduler")
	field("Enabled", yesNo(settings.Scheduler.Enabled))
	field("Interval", settings.Scheduler.GetTaskConfig(domain.TaskIDLibraryIndex).Interval)
	cmd.Println()

	section("Snapshot")
	if settings.Snapshot.IsConfigured() {
		field("Endpoint", settings.Snapshot.Endpoint)
		field("Bucket", settings.Snapshot.Bucket)
		field("Prefix", settings.Snapshot.Prefix)
		field("TLS", yesNo(settings.Snapshot.Secure))
		field("Access key", maskSecret(settings.Snapshot.AccessKey))
		field("Secret key", maskSecret(settings.Snapshot.SecretKey))
	} else {
		cmd.Println("  " + st.Muted("not configured"))
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if isSecretKey(key) {
		value = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

// Helper functions.

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "secret_key") || strings.HasSuffix(key, "access_key")
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func maskSecret(value string) string {
	if value == "" {
		return "(not set)"
	}
	return maskAPIKey(value)
}

func formatRate(rps float64) string {
	if rps <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%g", rps)
}

func formatWorkers(n int) string {
	if n <= 0 {
		return "all CPUs"
	}
	return fmt.Sprintf("%d", n)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
