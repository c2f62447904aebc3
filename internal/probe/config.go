// Package probe exercises a running MobiCost service end to end: it asks
// for presets of every tier, predicts them concurrently and verifies each
// answer against the response contract.
package probe

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/okian/mobicost/internal/domain/model"
)

// Defaults used by the CLI.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultSamples = 5
	DefaultWorkers = 4
	DefaultTimeout = 10 * time.Second
)

// ErrInvalidConfig reports an unusable probe configuration.
var ErrInvalidConfig = errors.New("invalid probe config")

// ErrVerification reports that at least one sample failed verification.
var ErrVerification = errors.New("verification failed")

// Config holds configuration for one probe run.
type Config struct {
	BaseURL    string        `mapstructure:"url"`
	Samples    int           `mapstructure:"samples"` // presets per tier
	Workers    int           `mapstructure:"workers"`
	Timeout    time.Duration `mapstructure:"timeout"`
	OutputFile string        `mapstructure:"output"`
	NoColor    bool          `mapstructure:"no-color"`
	Verbose    bool          `mapstructure:"verbose"`
}

// Validate rejects settings the probe cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: url %q must be an absolute http(s) URL", ErrInvalidConfig, c.BaseURL)
	}
	switch {
	case c.Samples < 1:
		return fmt.Errorf("%w: samples must be positive, got %d", ErrInvalidConfig, c.Samples)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConfig, c.Timeout)
	}
	return nil
}

// Prediction mirrors the fields of a /v1/predict response the probe checks.
type Prediction struct {
	RequestID     string    `json:"request_id"`
	Tier          int       `json:"tier"`
	Label         string    `json:"label"`
	Confidence    float64   `json:"confidence"`
	Classes       []string  `json:"classes"`
	Probabilities []float64 `json:"probabilities"`
}

// Sample is one preset sent to the service and what came back.
type Sample struct {
	Requested  string        `json:"requested"`
	Spec       model.RawSpec `json:"spec"`
	Prediction *Prediction   `json:"prediction,omitempty"`
	Latency    time.Duration `json:"latency_ns"`
	Error      string        `json:"error,omitempty"`
}

// OK reports whether the sample was answered and verified.
func (s Sample) OK() bool { return s.Error == "" && s.Prediction != nil }

// Report summarizes a probe run.
type Report struct {
	Samples   []Sample      `json:"samples"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Matched   int           `json:"matched"` // predicted tier equals requested tier
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration_ns"`
}
