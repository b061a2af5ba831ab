// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - External errors are wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory submission intake queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of apply workers. The ledger is
	// single-writer; values above 1 trade that guarantee for throughput.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the submission-id idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// TrustWindowMonths is the trailing window for trust ratings.
	TrustWindowMonths int `koanf:"trust_window_months"`

	// BackgroundLockMonths is the lock applied after a background
	// selection change.
	BackgroundLockMonths int `koanf:"background_lock_months"`

	// ExpectationsWeight and GrowthWeight set the trust blend split. They
	// are normalized to sum to 1 at engine start.
	ExpectationsWeight float64 `koanf:"expectations_weight"`
	GrowthWeight       float64 `koanf:"growth_weight"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9090",
		QueueSize:            100_000,
		WorkerCount:          1,
		DedupeSize:           500_000,
		MaxLeaderboardLimit:  100,
		TrustWindowMonths:    12,
		BackgroundLockMonths: 12,
		ExpectationsWeight:   0.65,
		GrowthWeight:         0.35,
	}
}
