package metrics

import (
	"sync"

	"github.com/mfreeman451/passpersist/pkg/models"
)

// RingBuffer is a fixed-size buffer of refresh cycles. The oldest cycle is
// overwritten once the buffer is full.
type RingBuffer struct {
	mu     sync.RWMutex
	cycles []models.RefreshCycle
	pos    int
	count  int
}

// NewBuffer creates a new CycleStore holding up to size cycles.
func NewBuffer(size int) CycleStore {
	if size <= 0 {
		size = 1
	}

	return &RingBuffer{
		cycles: make([]models.RefreshCycle, size),
	}
}

// NewBufferFromConfig sizes the buffer from cfg, or returns a no-op store
// when metrics are disabled.
func NewBufferFromConfig(cfg models.MetricsConfig) CycleStore {
	if !cfg.Enabled {
		return nopStore{}
	}

	return NewBuffer(cfg.RetentionOrDefault())
}

// Add records a cycle.
func (b *RingBuffer) Add(cycle models.RefreshCycle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cycles[b.pos] = cycle
	b.pos = (b.pos + 1) % len(b.cycles)

	if b.count < len(b.cycles) {
		b.count++
	}
}

// GetCycles returns the recorded cycles, oldest first.
func (b *RingBuffer) GetCycles() []models.RefreshCycle {
	b.mu.RLock()
	defer b.mu.RUnlock()

	size := len(b.cycles)
	out := make([]models.RefreshCycle, 0, b.count)

	start := (b.pos - b.count + size) % size
	for i := 0; i < b.count; i++ {
		out = append(out, b.cycles[(start+i)%size])
	}

	return out
}

// GetLastCycle returns the most recent cycle, or nil if none was recorded.
func (b *RingBuffer) GetLastCycle() *models.RefreshCycle {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return nil
	}

	last := b.cycles[(b.pos-1+len(b.cycles))%len(b.cycles)]

	return &last
}

type nopStore struct{}

func (nopStore) Add(models.RefreshCycle)            {}
func (nopStore) GetCycles() []models.RefreshCycle   { return nil }
func (nopStore) GetLastCycle() *models.RefreshCycle { return nil }
