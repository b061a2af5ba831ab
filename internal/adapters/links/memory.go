// Package links provides an in-memory implementation of the external
// relationship ("link") collaborator.
//
// The reputation engine only consumes links: a checkin is accepted solely
// between parties whose link is ACTIVE with working-together mutually
// enabled. The real link state machine lives outside this service; this
// adapter mirrors enough of it for embedded and test use.
package links

import (
	"context"
	"sync"

	"github.com/okian/vouch/internal/domain/model"
)

// MemoryProvider stores links keyed by (seeker, retainer) pair.
type MemoryProvider struct {
	mu    sync.RWMutex
	links map[string]model.Link
}

// NewMemoryProvider creates an empty link registry.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		links: make(map[string]model.Link),
	}
}

func pairKey(seekerID, retainerID string) string {
	return seekerID + "\x00" + retainerID
}

// Link returns the relationship record for the pair, if any.
func (p *MemoryProvider) Link(_ context.Context, seekerID, retainerID string) (model.Link, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	l, ok := p.links[pairKey(seekerID, retainerID)]
	return l, ok
}

// Upsert stores or replaces a link record.
func (p *MemoryProvider) Upsert(_ context.Context, l model.Link) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.links[pairKey(l.SeekerID, l.RetainerID)] = l
}

// SetWorkingTogether flips one side's working-together flag on an existing
// link. Missing links are ignored.
func (p *MemoryProvider) SetWorkingTogether(_ context.Context, seekerID, retainerID string, side model.Role, enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := pairKey(seekerID, retainerID)
	l, ok := p.links[key]
	if !ok {
		return
	}
	if side == model.RoleSeeker {
		l.WorkingTogetherBySeeker = enabled
	} else {
		l.WorkingTogetherByRetainer = enabled
	}
	p.links[key] = l
}

// Len returns the number of stored links.
func (p *MemoryProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.links)
}
