// Package config defines service configuration and its loading.
//
// Defaults come from New; Load layers an optional YAML file and MOBICOST_*
// environment variables on top and validates the result.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ClassifierPath and ScalerPath locate the model artifacts.
	ClassifierPath string `koanf:"classifier_path"`
	ScalerPath     string `koanf:"scaler_path"`

	// MemoSize bounds the prediction memo; <= 0 disables it.
	MemoSize int `koanf:"memo_size"`

	// WorkerCount sets the number of batch inference workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the batch job queue.
	QueueSize int `koanf:"queue_size"`

	// MaxBatchSize caps the items accepted by one batch request.
	MaxBatchSize int `koanf:"max_batch_size"`

	// BatchTimeoutMS bounds how long a batch request waits for its results.
	BatchTimeoutMS int `koanf:"batch_timeout_ms"`

	// PresetSeed seeds the preset generator; 0 seeds from the clock.
	PresetSeed int64 `koanf:"preset_seed"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		ClassifierPath: "artifacts/classifier.yaml",
		ScalerPath:     "artifacts/scaler.yaml",
		MemoSize:       4096,
		WorkerCount:    runtime.NumCPU(),
		QueueSize:      1024,
		MaxBatchSize:   256,
		BatchTimeoutMS: 10_000,
	}
}

// BatchTimeout returns BatchTimeoutMS as a duration.
func (c *Config) BatchTimeout() time.Duration {
	return time.Duration(c.BatchTimeoutMS) * time.Millisecond
}
