package service

import "errors"

var (
	// ErrNotStarted is returned by batch operations before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrBackpressure is returned when the batch queue cannot take the items.
	ErrBackpressure = errors.New("backpressure")
	// ErrEmptyBatch is returned for a batch without items.
	ErrEmptyBatch = errors.New("empty batch")
	// ErrBatchTooLarge is returned when a batch exceeds the configured cap.
	ErrBatchTooLarge = errors.New("batch too large")
	// ErrBatchTimeout marks batch items that were not answered in time.
	ErrBatchTimeout = errors.New("batch item timed out")
)
