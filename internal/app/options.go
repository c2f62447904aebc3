package service

import (
	"time"

	"github.com/okian/mobicost/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of batch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the batch job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMemoSize bounds the prediction memo; zero or negative disables it.
func WithMemoSize(size int) Option {
	return func(s *Service) {
		s.memoSize = size
	}
}

// WithMaxBatchSize caps the number of items accepted per batch.
func WithMaxBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.maxBatchSize = size
		}
	}
}

// WithBatchTimeout bounds how long a batch waits for its items.
func WithBatchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.batchTimeout = d
		}
	}
}

// WithPresetSeed seeds the quick-start preset generator; 0 seeds from the clock.
func WithPresetSeed(seed int64) Option {
	return func(s *Service) {
		s.presetSeed = seed
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
