package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/mobicost/internal/domain/tier"
	"github.com/okian/mobicost/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Run executes a complete probe and renders the summary table to out. It
// returns ErrVerification when any sample failed.
func Run(ctx context.Context, cfg *Config, out io.Writer) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Named("probe")
	report := &Report{StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("samplesPerTier", cfg.Samples),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
	)

	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}
	log.Info(ctx, "service is healthy")

	samples, err := collectPresets(ctx, client, cfg.Samples)
	if err != nil {
		return nil, fmt.Errorf("preset retrieval failed: %w", err)
	}

	predictAll(ctx, client, cfg, samples)

	report.Samples = samples
	for _, s := range samples {
		if !s.OK() {
			report.Failed++
			continue
		}
		report.Passed++
		if s.Prediction.Label == s.Requested {
			report.Matched++
		}
	}
	report.Duration = time.Since(report.StartTime)

	if err := Render(out, report, !cfg.NoColor); err != nil {
		return report, fmt.Errorf("failed to render report: %w", err)
	}
	if cfg.OutputFile != "" {
		if err := Save(cfg.OutputFile, report); err != nil {
			log.Warn(ctx, "failed to save samples", logger.Error(err))
		} else {
			log.Info(ctx, "samples saved", logger.String("filename", cfg.OutputFile))
		}
	}

	log.Info(ctx, "probe finished",
		logger.Int("passed", report.Passed),
		logger.Int("failed", report.Failed),
		logger.Int("matched", report.Matched),
		logger.Duration("duration", report.Duration),
	)
	if report.Failed > 0 {
		return report, fmt.Errorf("%w: %d of %d samples", ErrVerification, report.Failed, len(samples))
	}
	return report, nil
}

// collectPresets fetches n presets for every tier, in tier order.
func collectPresets(ctx context.Context, client *Client, n int) ([]Sample, error) {
	samples := make([]Sample, 0, n*tier.Count)
	for _, t := range tier.All() {
		for range n {
			spec, err := client.Preset(ctx, t.Slug)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", t.Slug, err)
			}
			samples = append(samples, Sample{Requested: t.Label, Spec: spec})
		}
	}
	return samples, nil
}

// predictAll fills in every sample using cfg.Workers concurrent callers.
// Each worker owns the samples it receives by index.
func predictAll(ctx context.Context, client *Client, cfg *Config, samples []Sample) {
	log := logger.Named("probe")
	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				s := &samples[i]
				start := time.Now()
				p, err := client.Predict(ctx, s.Spec)
				s.Latency = time.Since(start)
				if err == nil {
					err = Verify(p)
				}
				if err != nil {
					s.Error = err.Error()
					log.Warn(ctx, "sample failed", logger.Int("sample", i), logger.Error(err))
					continue
				}
				s.Prediction = &p
				if cfg.Verbose {
					log.Info(ctx, "sample verified",
						logger.Int("sample", i),
						logger.String("requested", s.Requested),
						logger.String("predicted", p.Label),
						logger.String("requestID", p.RequestID),
					)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range samples {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()

	for i := range samples {
		if samples[i].Prediction == nil && samples[i].Error == "" {
			samples[i].Error = fmt.Sprintf("not submitted: %v", ctx.Err())
		}
	}
}

// Save writes the report as indented JSON, creating parent directories.
func Save(filename string, report *Report) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
