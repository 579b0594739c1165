// Package cli provides the sceneseek command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driving"
	"github.com/custodia-labs/sceneseek/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services holds the driving ports the commands use.
// Any of them may be nil; commands needing a missing one fail.
type Services struct {
	Indexer   driving.Indexer
	Query     driving.QueryService
	Inspector driving.IndexInspector
	Snapshot  driving.SnapshotService
	Settings  driving.SettingsService
	Scheduler driving.Scheduler

	// LibraryPath is the configured library root watched by watch and serve.
	LibraryPath string

	// IsVideo filters library changes seen by the watcher.
	IsVideo func(path string) bool
}

var (
	indexer         driving.Indexer
	queryService    driving.QueryService
	inspector       driving.IndexInspector
	snapshotService driving.SnapshotService
	settingsService driving.SettingsService
	scheduler       driving.Scheduler
	libraryPath     string
	isVideo         func(path string) bool

	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "sceneseek",
	Short: "Find video scenes by image",
	Long: `SceneSeek indexes a library of videos scene by scene and finds the
scenes that look most like a query image.

Scenes are retrieved by embedding distance and reranked by local feature
matches, so a still taken from a video finds the moment it came from.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		logger.SetQuiet(quiet)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress warnings")
}

// SetServices installs the services used by the commands.
func SetServices(s Services) {
	indexer = s.Indexer
	queryService = s.Query
	inspector = s.Inspector
	snapshotService = s.Snapshot
	settingsService = s.Settings
	scheduler = s.Scheduler
	libraryPath = s.LibraryPath
	isVideo = s.IsVideo
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the command's context, or Background outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// explain adds a next step to errors the user can act on.
func explain(err error) error {
	switch {
	case errors.Is(err, domain.ErrIndexNotReady):
		return fmt.Errorf("%w\nrun 'sceneseek index' to build the index", err)
	case errors.Is(err, domain.ErrIndexingInProgress):
		return fmt.Errorf("%w\nwait for the current run to finish", err)
	case errors.Is(err, domain.ErrProviderUnavailable):
		return fmt.Errorf("%w\ncheck that the inference sidecar is running ('sceneseek settings show')", err)
	case errors.Is(err, domain.ErrSnapshotUnavailable):
		return fmt.Errorf("%w\nset snapshot.endpoint and snapshot.bucket with 'sceneseek settings set'", err)
	}
	return err
}
