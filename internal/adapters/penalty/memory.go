// Package penalty provides an in-memory implementation of the external
// bad-exit penalty collaborator.
//
// Seeker trust ratings subtract an externally-managed penalty percentage;
// where that penalty comes from is outside this service.
package penalty

import (
	"context"
	"sync"
)

// MemoryProvider stores active penalty percentages per seeker.
type MemoryProvider struct {
	mu        sync.RWMutex
	penalties map[string]float64
}

// NewMemoryProvider creates an empty penalty registry.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		penalties: make(map[string]float64),
	}
}

// ActiveBadExitPenaltyPercent returns the penalty for a seeker, 0 if none.
func (p *MemoryProvider) ActiveBadExitPenaltyPercent(_ context.Context, seekerID string) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.penalties[seekerID]
}

// Set records a penalty percentage for a seeker. Non-positive values clear
// the entry.
func (p *MemoryProvider) Set(_ context.Context, seekerID string, percent float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if percent <= 0 {
		delete(p.penalties, seekerID)
		return
	}
	p.penalties[seekerID] = percent
}
