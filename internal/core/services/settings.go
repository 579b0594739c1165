package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLibraryPath       = "library.path"
	keyLibraryExtensions = "library.extensions"
	keyDataDir           = "storage.data_dir"
	keyInferenceBaseURL  = "inference.base_url"
	keyInferenceModel    = "inference.model"
	keyInferenceTimeout  = "inference.timeout_seconds"
	keyInferenceRate     = "inference.requests_per_second"
	keyFFmpegPath        = "video.ffmpeg_path"
	keyFFprobePath       = "video.ffprobe_path"
	keySceneThreshold    = "video.scene_threshold"
	keyFrameSize         = "video.frame_size"
	keyIndexingWorkers   = "indexing.workers"
	keyQueryTopN         = "query.top_n"
	keyQueryCandidates   = "query.candidate_count"
	keyQueryMinMatches   = "query.min_match_count"
	keyQueryWorkers      = "query.workers"
	keySchedulerEnabled  = "scheduler.enabled"
	keySchedulerInterval = "scheduler.interval_minutes"
	keySnapshotEndpoint  = "snapshot.endpoint"
	keySnapshotBucket    = "snapshot.bucket"
	keySnapshotPrefix    = "snapshot.prefix"
	keySnapshotAccessKey = "snapshot.access_key"
	keySnapshotSecretKey = "snapshot.secret_key"
	keySnapshotSecure    = "snapshot.secure"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
	kindList
)

// settingKeys lists every settable key in display order.
var settingKeys = []struct {
	key  string
	kind settingKind
}{
	{keyLibraryPath, kindString},
	{keyLibraryExtensions, kindList},
	{keyDataDir, kindString},
	{keyInferenceBaseURL, kindString},
	{keyInferenceModel, kindString},
	{keyInferenceTimeout, kindInt},
	{keyInferenceRate, kindFloat},
	{keyFFmpegPath, kindString},
	{keyFFprobePath, kindString},
	{keySceneThreshold, kindFloat},
	{keyFrameSize, kindInt},
	{keyIndexingWorkers, kindInt},
	{keyQueryTopN, kindInt},
	{keyQueryCandidates, kindInt},
	{keyQueryMinMatches, kindInt},
	{keyQueryWorkers, kindInt},
	{keySchedulerEnabled, kindBool},
	{keySchedulerInterval, kindInt},
	{keySnapshotEndpoint, kindString},
	{keySnapshotBucket, kindString},
	{keySnapshotPrefix, kindString},
	{keySnapshotAccessKey, kindString},
	{keySnapshotSecretKey, kindString},
	{keySnapshotSecure, kindBool},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	homeDir     string
}

// NewSettingsService creates a new settings service.
// homeDir is the application directory defaults are rooted at.
func NewSettingsService(configStore driven.ConfigStore, homeDir string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		homeDir:     homeDir,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings(s.homeDir)

	extensions := s.configStore.GetStringSlice(keyLibraryExtensions)
	if len(extensions) == 0 {
		extensions = d.Library.Extensions
	}

	schedInterval := time.Duration(s.getInt(keySchedulerInterval, 0)) * time.Minute
	if schedInterval <= 0 {
		schedInterval = d.Scheduler.GetTaskConfig(domain.TaskIDLibraryIndex).Interval
	}
	scheduler := domain.DefaultSchedulerConfig()
	scheduler.Enabled = s.getBool(keySchedulerEnabled, d.Scheduler.Enabled)
	scheduler.TaskConfigs[domain.TaskIDLibraryIndex] = domain.TaskConfig{
		Enabled:  true,
		Interval: schedInterval,
	}

	timeout := d.Inference.Timeout
	if secs := s.getInt(keyInferenceTimeout, 0); secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	settings := &domain.AppSettings{
		Library: domain.LibrarySettings{
			Path:       s.getString(keyLibraryPath, d.Library.Path),
			Extensions: extensions,
		},
		Storage: domain.StorageSettings{
			DataDir: s.getString(keyDataDir, d.Storage.DataDir),
		},
		Inference: domain.InferenceSettings{
			BaseURL:           s.getString(keyInferenceBaseURL, d.Inference.BaseURL),
			Model:             s.getString(keyInferenceModel, d.Inference.Model),
			Timeout:           timeout,
			RequestsPerSecond: s.getFloat(keyInferenceRate, d.Inference.RequestsPerSecond),
		},
		Video: domain.VideoSettings{
			FFmpegPath:     s.getString(keyFFmpegPath, d.Video.FFmpegPath),
			FFprobePath:    s.getString(keyFFprobePath, d.Video.FFprobePath),
			SceneThreshold: s.getFloat(keySceneThreshold, d.Video.SceneThreshold),
			FrameSize:      s.getInt(keyFrameSize, d.Video.FrameSize),
		},
		Indexing: domain.IndexingSettings{
			Workers: s.getInt(keyIndexingWorkers, d.Indexing.Workers),
		},
		Query: domain.QuerySettings{
			TopN:           s.getInt(keyQueryTopN, d.Query.TopN),
			CandidateCount: s.getInt(keyQueryCandidates, d.Query.CandidateCount),
			MinMatchCount:  s.getInt(keyQueryMinMatches, d.Query.MinMatchCount),
			Workers:        s.getInt(keyQueryWorkers, d.Query.Workers),
		},
		Scheduler: scheduler,
		Snapshot: domain.SnapshotSettings{
			Endpoint:  s.configStore.GetString(keySnapshotEndpoint),
			Bucket:    s.configStore.GetString(keySnapshotBucket),
			Prefix:    s.getString(keySnapshotPrefix, d.Snapshot.Prefix),
			AccessKey: s.configStore.GetString(keySnapshotAccessKey),
			SecretKey: s.configStore.GetString(keySnapshotSecretKey),
			Secure:    s.getBool(keySnapshotSecure, d.Snapshot.Secure),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyLibraryPath, settings.Library.Path},
		{keyLibraryExtensions, settings.Library.Extensions},
		{keyDataDir, settings.Storage.DataDir},
		{keyInferenceBaseURL, settings.Inference.BaseURL},
		{keyInferenceModel, settings.Inference.Model},
		{keyInferenceTimeout, int(settings.Inference.Timeout / time.Second)},
		{keyInferenceRate, settings.Inference.RequestsPerSecond},
		{keyFFmpegPath, settings.Video.FFmpegPath},
		{keyFFprobePath, settings.Video.FFprobePath},
		{keySceneThreshold, settings.Video.SceneThreshold},
		{keyFrameSize, settings.Video.FrameSize},
		{keyIndexingWorkers, settings.Indexing.Workers},
		{keyQueryTopN, settings.Query.TopN},
		{keyQueryCandidates, settings.Query.CandidateCount},
		{keyQueryMinMatches, settings.Query.MinMatchCount},
		{keyQueryWorkers, settings.Query.Workers},
		{keySchedulerEnabled, settings.Scheduler.Enabled},
		{keySchedulerInterval, int(settings.Scheduler.GetTaskConfig(domain.TaskIDLibraryIndex).Interval / time.Minute)},
		{keySnapshotEndpoint, settings.Snapshot.Endpoint},
		{keySnapshotBucket, settings.Snapshot.Bucket},
		{keySnapshotPrefix, settings.Snapshot.Prefix},
		{keySnapshotAccessKey, settings.Snapshot.AccessKey},
		{keySnapshotSecretKey, settings.Snapshot.SecretKey},
		{keySnapshotSecure, settings.Snapshot.Secure},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value according to the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	for _, k := range settingKeys {
		if k.key != key {
			continue
		}
		parsed, err := parseSetting(k.kind, value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
		}
		if err := s.configStore.Set(key, parsed); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}

// Keys returns the settable keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings(s.homeDir)
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func parseSetting(kind settingKind, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("must not be negative")
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, err
		}
		if f < 0 {
			return nil, fmt.Errorf("must not be negative")
		}
		return f, nil
	case kindBool:
		return strconv.ParseBool(value)
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			item = strings.ToLower(strings.TrimSpace(item))
			if item == "" {
				continue
			}
			if !strings.HasPrefix(item, ".") {
				item = "." + item
			}
			items = append(items, item)
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("empty list")
		}
		return items, nil
	default:
		return value, nil
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
