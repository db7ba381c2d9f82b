package batch

import (
	"sync"
	"time"
)

const percentMultiplier = 100

// Progress tracks a running Process call. Safe for concurrent use.
type Progress struct {
	mu sync.RWMutex

	totalItems       int
	processedItems   int
	failedItems      int
	totalBatches     int
	processedBatches int
	batchSize        int
	startTime        time.Time
	lastUpdateTime   time.Time
}

// NewProgress creates a tracker starting now.
func NewProgress(totalItems, totalBatches, batchSize int) *Progress {
	now := time.Now()
	return &Progress{
		totalItems:     totalItems,
		totalBatches:   totalBatches,
		batchSize:      batchSize,
		startTime:      now,
		lastUpdateTime: now,
	}
}

// AddProcessed records a successful batch of n items.
func (p *Progress) AddProcessed(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processedItems += n
	p.processedBatches++
	p.lastUpdateTime = time.Now()
}

// AddBatch records a batch in which processed items succeeded and failed items did not.
func (p *Progress) AddBatch(processed, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processedItems += processed
	p.failedItems += failed
	p.processedBatches++
	p.lastUpdateTime = time.Now()
}

// PercentComplete counts failed items as done.
func (p *Progress) PercentComplete() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.percentLocked()
}

// IsComplete reports whether every item has been attempted.
func (p *Progress) IsComplete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.processedItems+p.failedItems >= p.totalItems
}

// EstimatedTimeRemaining extrapolates from the average time per item so far.
func (p *Progress) EstimatedTimeRemaining() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	done := p.processedItems + p.failedItems
	if done == 0 {
		return 0
	}
	perItem := time.Since(p.startTime) / time.Duration(done)
	return perItem * time.Duration(p.totalItems-done)
}

// Snapshot returns a copy of the current state.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	elapsed := time.Since(p.startTime)
	var rate float64
	if s := elapsed.Seconds(); s > 0 {
		rate = float64(p.processedItems+p.failedItems) / s
	}
	return ProgressSnapshot{
		TotalItems:       p.totalItems,
		ProcessedItems:   p.processedItems,
		FailedItems:      p.failedItems,
		TotalBatches:     p.totalBatches,
		ProcessedBatches: p.processedBatches,
		BatchSize:        p.batchSize,
		StartTime:        p.startTime,
		LastUpdateTime:   p.lastUpdateTime,
		PercentComplete:  p.percentLocked(),
		ElapsedTime:      elapsed,
		ItemsPerSecond:   rate,
	}
}

func (p *Progress) percentLocked() float64 {
	if p.totalItems == 0 {
		return 0
	}
	return float64(p.processedItems+p.failedItems) / float64(p.totalItems) * percentMultiplier
}

// ProgressSnapshot is an immutable view of Progress.
type ProgressSnapshot struct {
	TotalItems       int
	ProcessedItems   int
	FailedItems      int
	TotalBatches     int
	ProcessedBatches int
	BatchSize        int
	StartTime        time.Time
	LastUpdateTime   time.Time
	PercentComplete  float64
	ElapsedTime      time.Duration
	ItemsPerSecond   float64
}
