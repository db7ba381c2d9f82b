package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize   = 10
	MinBatchSize       = 1
	MaxBatchSize       = 1000
	DefaultConcurrency = 4
)

var (
	ErrInvalidBatchSize = errors.New("batch size must be between 1 and 1000")
	ErrNilCallback      = errors.New("batch callback cannot be nil")
	ErrEmptyItems       = errors.New("items slice cannot be empty")
)

// ItemErrors is returned by a Callback when only some items of its batch
// failed. Progress then counts len(Errs) items as failed and the rest as processed.
type ItemErrors struct {
	Errs []error
}

func (e *ItemErrors) Error() string { return errors.Join(e.Errs...).Error() }

// Unwrap exposes the per-item errors to errors.Is and errors.As.
func (e *ItemErrors) Unwrap() []error { return e.Errs }

// failedCount returns how many items of a batch of size n err accounts for.
func failedCount(err error, n int) int {
	var ie *ItemErrors
	if errors.As(err, &ie) && len(ie.Errs) <= n {
		return len(ie.Errs)
	}
	return n
}

// Callback processes one batch. offset is the index of batch[0] in the full list.
type Callback[T any] func(ctx context.Context, batch []T, offset int) error

// ProgressCallback receives a snapshot after every finished batch.
type ProgressCallback func(ProgressSnapshot)

// Processor splits work into batches and runs up to concurrency of them at once.
type Processor[T any] struct {
	batchSize   int
	concurrency int
	onProgress  ProgressCallback
}

// NewProcessor creates a Processor. concurrency below 1 means sequential.
func NewProcessor[T any](batchSize, concurrency int) (*Processor[T], error) {
	if batchSize < MinBatchSize || batchSize > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	return &Processor[T]{batchSize: batchSize, concurrency: max(concurrency, 1)}, nil
}

// NewProcessorWithDefaults uses DefaultBatchSize and DefaultConcurrency.
func NewProcessorWithDefaults[T any]() *Processor[T] {
	return &Processor[T]{batchSize: DefaultBatchSize, concurrency: DefaultConcurrency}
}

// WithProgressCallback sets the progress callback. Calls are serialized.
func (p *Processor[T]) WithProgressCallback(cb ProgressCallback) *Processor[T] {
	p.onProgress = cb
	return p
}

// BatchSize returns the configured batch size.
func (p *Processor[T]) BatchSize() int { return p.batchSize }

// Concurrency returns the configured concurrency limit.
func (p *Processor[T]) Concurrency() int { return p.concurrency }

// Process runs cb over every batch. Batch errors are joined and returned
// after all started batches finish; cancellation stops new batches from starting.
func (p *Processor[T]) Process(ctx context.Context, items []T, cb Callback[T]) (*Progress, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	if cb == nil {
		return nil, ErrNilCallback
	}

	bounds := p.CalculateBatches(len(items))
	progress := NewProgress(len(items), len(bounds), p.batchSize)

	var (
		g      errgroup.Group
		mu     sync.Mutex
		errs   []error
		notify sync.Mutex
	)
	g.SetLimit(p.concurrency)

	for i, b := range bounds {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			batch := items[b[0]:b[1]]
			if err := cb(ctx, batch, b[0]); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("batch %d failed: %w", i, err))
				mu.Unlock()
				failed := failedCount(err, len(batch))
				progress.AddBatch(len(batch)-failed, failed)
			} else {
				progress.AddProcessed(len(batch))
			}
			if p.onProgress != nil {
				notify.Lock()
				p.onProgress(progress.Snapshot())
				notify.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return progress, errors.Join(errs...)
}

// CalculateBatches returns [start, end) bounds covering totalItems.
func (p *Processor[T]) CalculateBatches(totalItems int) [][2]int {
	n := (totalItems + p.batchSize - 1) / p.batchSize
	out := make([][2]int, n)
	for i := range n {
		start := i * p.batchSize
		out[i] = [2]int{start, min(start+p.batchSize, totalItems)}
	}
	return out
}
