package domain

import (
	"path/filepath"
	"time"
)

const unknownDescription = "Unknown"

// LibrarySettings locates the video library.
type LibrarySettings struct {
	// Path is the library root directory.
	Path string

	// Extensions lists the video file extensions to discover, lowercase with dot.
	Extensions []string
}

// StorageSettings locates persisted state.
type StorageSettings struct {
	// DataDir holds the vector index, scene catalog and SQLite database.
	DataDir string
}

// IndexPath returns the vector index file path.
func (s StorageSettings) IndexPath() string {
	return filepath.Join(s.DataDir, IndexFileName)
}

// CatalogPath returns the scene catalog file path.
func (s StorageSettings) CatalogPath() string {
	return filepath.Join(s.DataDir, CatalogFileName)
}

// Persisted file names inside the data directory.
const (
	IndexFileName   = "index.ssvi"
	CatalogFileName = "catalog.json"
)

// InferenceSettings configures the embedding and descriptor sidecar.
type InferenceSettings struct {
	// BaseURL is the sidecar endpoint.
	BaseURL string

	// Model is the embedding model name passed to the sidecar.
	Model string

	// Timeout bounds each request.
	Timeout time.Duration

	// RequestsPerSecond throttles requests; zero disables throttling.
	RequestsPerSecond float64
}

// VideoSettings configures frame decoding and scene detection.
type VideoSettings struct {
	FFmpegPath  string
	FFprobePath string

	// SceneThreshold is the scene change score above which a cut is detected.
	SceneThreshold float64

	// FrameSize is the square edge length frames are resized to before embedding.
	FrameSize int
}

// IndexingSettings configures the indexing pipeline.
type IndexingSettings struct {
	// Workers bounds the number of videos processed concurrently.
	Workers int
}

// QuerySettings holds query defaults.
type QuerySettings struct {
	TopN           int
	CandidateCount int
	MinMatchCount  int

	// Workers bounds concurrent reranking; zero uses GOMAXPROCS.
	Workers int
}

// Options returns the query options these settings describe.
func (q QuerySettings) Options() QueryOptions {
	return QueryOptions{
		TopN:           q.TopN,
		CandidateCount: q.CandidateCount,
		MinMatchCount:  q.MinMatchCount,
	}
}

// SnapshotSettings configures S3-compatible snapshot storage.
type SnapshotSettings struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	Secure    bool
}

// IsConfigured returns true if snapshot storage can be used.
func (s SnapshotSettings) IsConfigured() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// AppSettings holds all application settings.
type AppSettings struct {
	Library   LibrarySettings
	Storage   StorageSettings
	Inference InferenceSettings
	Video     VideoSettings
	Indexing  IndexingSettings
	Query     QuerySettings
	Scheduler SchedulerConfig
	Snapshot  SnapshotSettings
}

// DefaultVideoExtensions returns the video file extensions discovered by default.
func DefaultVideoExtensions() []string {
	return []string{".mp4", ".avi", ".mov", ".mkv"}
}

// DefaultAppSettings returns settings with sensible defaults rooted at homeDir.
// homeDir is the application directory (e.g. ~/.sceneseek).
func DefaultAppSettings(homeDir string) AppSettings {
	return AppSettings{
		Library: LibrarySettings{
			Path:       filepath.Join(homeDir, "videos"),
			Extensions: DefaultVideoExtensions(),
		},
		Storage: StorageSettings{
			DataDir: filepath.Join(homeDir, "data"),
		},
		Inference: InferenceSettings{
			BaseURL:           "http://localhost:8500",
			Model:             "vit-base-patch16-224",
			Timeout:           60 * time.Second,
			RequestsPerSecond: 20,
		},
		Video: VideoSettings{
			FFmpegPath:     "ffmpeg",
			FFprobePath:    "ffprobe",
			SceneThreshold: 0.3,
			FrameSize:      224,
		},
		Indexing: IndexingSettings{
			Workers: 4,
		},
		Query: QuerySettings{
			TopN:           DefaultTopN,
			CandidateCount: DefaultCandidateCount,
			MinMatchCount:  DefaultMinMatchCount,
		},
		Scheduler: DefaultSchedulerConfig(),
		Snapshot: SnapshotSettings{
			Prefix: "sceneseek/",
			Secure: true,
		},
	}
}
