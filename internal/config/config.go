// Package config defines service configuration structures and loading.
//
// Conventions:
// - Defaults come from New; Load layers file and env on top.
// - External errors are wrapped via this package's sentinel kinds.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ActivityQueueSize bounds the in-memory activity event queue.
	ActivityQueueSize int `koanf:"activity_queue_size"`

	// WorkerCount sets the number of activity workers. Zero means one
	// per logical CPU, doubled.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the activity deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the signal store sharding.
	ShardCount int `koanf:"shard_count"`

	// TopK sets the shortlist length attached to new issues.
	TopK int `koanf:"top_k"`

	// ResolvedWeight and CommitWeight mix the two raw counters into
	// the expertise score.
	ResolvedWeight float64 `koanf:"resolved_weight"`
	CommitWeight   float64 `koanf:"commit_weight"`

	// Saturation is the k of the saturating curve x/(x+k).
	Saturation float64 `koanf:"saturation"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9090",
		ActivityQueueSize: 10_000,
		WorkerCount:       0,
		DedupeSize:        50_000,
		ShardCount:        8,
		TopK:              3,
		ResolvedWeight:    0.7,
		CommitWeight:      0.3,
		Saturation:        5.0,
	}
}
