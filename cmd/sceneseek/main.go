// Command sceneseek indexes a video library and finds scenes by image.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/sceneseek/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sceneseek/internal/adapters/driven/inference"
	"github.com/custodia-labs/sceneseek/internal/adapters/driven/library/filesystem"
	"github.com/custodia-labs/sceneseek/internal/adapters/driven/render/jpeg"
	"github.com/custodia-labs/sceneseek/internal/adapters/driven/snapshot/minio"
	"github.com/custodia-labs/sceneseek/internal/adapters/driven/storage/indexfile"
	"github.com/custodia-labs/sceneseek/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sceneseek/internal/adapters/driven/video/ffmpeg"
	"github.com/custodia-labs/sceneseek/internal/adapters/driving/cli"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
	"github.com/custodia-labs/sceneseek/internal/core/services"
	"github.com/custodia-labs/sceneseek/internal/logger"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	homeDir, err := appDir()
	if err != nil {
		return err
	}

	configStore, err := file.NewConfigStore(homeDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, homeDir)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	repo := indexfile.NewRepository(settings.Storage.DataDir)
	handle := services.NewIndexHandle(repo)

	client := inference.NewClient(inference.Config{
		BaseURL:           settings.Inference.BaseURL,
		Model:             settings.Inference.Model,
		Timeout:           settings.Inference.Timeout,
		RequestsPerSecond: settings.Inference.RequestsPerSecond,
	})
	library := filesystem.NewLibrary(settings.Library.Extensions)
	frames := ffmpeg.NewFrameSource(settings.Video.FFmpegPath, nil)
	detector := ffmpeg.NewSceneDetector(ffmpeg.DetectorConfig{
		FFmpegPath:  settings.Video.FFmpegPath,
		FFprobePath: settings.Video.FFprobePath,
		Threshold:   settings.Video.SceneThreshold,
	}, nil)

	indexer := services.NewIndexingPipeline(
		handle, repo, library, detector, frames, client, store.RunStore(),
		services.IndexingConfig{
			LibraryPath: settings.Library.Path,
			Workers:     settings.Indexing.Workers,
			FrameSize:   settings.Video.FrameSize,
		},
	)

	query := services.NewQueryPipeline(
		handle,
		client,
		inference.NewLocalFeatures(client),
		frames,
		library,
		jpeg.NewRenderer(jpeg.DefaultQuality),
		services.NewRerankExecutor(settings.Query.Workers),
		settings.Library.Path,
	)

	var snapshotStore driven.SnapshotStore
	if settings.Snapshot.IsConfigured() {
		s, err := minio.New(minio.Config{
			Endpoint:  settings.Snapshot.Endpoint,
			Bucket:    settings.Snapshot.Bucket,
			AccessKey: settings.Snapshot.AccessKey,
			SecretKey: settings.Snapshot.SecretKey,
			Secure:    settings.Snapshot.Secure,
		})
		if err != nil {
			logger.Warn("snapshot storage disabled: %v", err)
		} else {
			snapshotStore = s
		}
	}
	snapshots := services.NewSnapshotService(snapshotStore, repo, repo, handle, indexer, settings.Snapshot.Prefix)

	svc := cli.Services{
		Indexer:     indexer,
		Query:       query,
		Inspector:   services.NewInspectService(handle),
		Snapshot:    snapshots,
		Settings:    settingsService,
		LibraryPath: settings.Library.Path,
		IsVideo:     library.IsVideo,
	}
	if settings.Scheduler.Enabled {
		svc.Scheduler = services.NewScheduler(
			settings.Scheduler, store.SchedulerStore(), indexer, settings.Library.Path)
	}

	cli.SetVersion(version)
	cli.SetServices(svc)
	return cli.Execute(ctx)
}

// appDir returns $SCENESEEK_HOME or ~/.sceneseek.
func appDir() (string, error) {
	if dir := os.Getenv("SCENESEEK_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".sceneseek"), nil
}
