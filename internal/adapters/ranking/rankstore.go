// Package ranking maintains per-role trust leaderboards.
//
// Ordering: trust percent DESC, then owner id ASC (deterministic). The
// backing structure is a size-augmented treap so rank lookups and top-N
// reads stay logarithmic while trust refreshes arrive continuously.
package ranking

import (
	"context"
	"math/rand"
	"sync"

	"github.com/okian/vouch/internal/domain/model"
)

// Store provides read/write access to the leaderboard state.
type Store interface {
	// Update upserts the trust percent for a profile.
	Update(ctx context.Context, role model.Role, ownerID string, percent float64) error

	// Remove drops a profile from its role's leaderboard, e.g. when its
	// rating degrades to "no data".
	Remove(ctx context.Context, role model.Role, ownerID string)

	// Rank returns the current rank and percent for a profile.
	// Returns ErrNotFound for unknown profiles.
	Rank(ctx context.Context, role model.Role, ownerID string) (model.Entry, error)

	// TopN returns the top-N entries for a role ordered by percent desc.
	TopN(ctx context.Context, role model.Role, n int) ([]model.Entry, error)

	// Count returns the number of profiles tracked for a role.
	Count(ctx context.Context, role model.Role) int
}

type node struct {
	id      string
	percent float64
	prio    uint64
	left    *node
	right   *node
	size    int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aPercent, aID) ranks earlier than (bPercent, bID).
func less(aPercent float64, aID string, bPercent float64, bID string) bool {
	if aPercent != bPercent {
		return aPercent > bPercent
	}
	return aID < bID
}

func rotateRight(n *node) *node {
	l := n.left
	n.left = l.right
	l.right = n
	fix(n)
	fix(l)
	return l
}

func rotateLeft(n *node) *node {
	r := n.right
	n.right = r.left
	r.left = n
	fix(n)
	fix(r)
	return r
}

func insert(n, x *node) *node {
	if n == nil {
		x.size = 1
		return x
	}
	if less(x.percent, x.id, n.percent, n.id) {
		n.left = insert(n.left, x)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, x)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func remove(n *node, percent float64, id string) *node {
	if n == nil {
		return nil
	}
	switch {
	case percent == n.percent && id == n.id:
		switch {
		case n.left == nil:
			return n.right
		case n.right == nil:
			return n.left
		case n.left.prio > n.right.prio:
			n = rotateRight(n)
			n.right = remove(n.right, percent, id)
		default:
			n = rotateLeft(n)
			n.left = remove(n.left, percent, id)
		}
	case less(percent, id, n.percent, n.id):
		n.left = remove(n.left, percent, id)
	default:
		n.right = remove(n.right, percent, id)
	}
	fix(n)
	return n
}

// rankOf returns the 1-based rank of (percent, id), assuming it is present.
func rankOf(n *node, percent float64, id string) int {
	rank := 1
	for n != nil {
		switch {
		case percent == n.percent && id == n.id:
			return rank + nsize(n.left)
		case less(percent, id, n.percent, n.id):
			n = n.left
		default:
			rank += nsize(n.left) + 1
			n = n.right
		}
	}
	return rank
}

func walk(n *node, visit func(*node) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.left, visit) {
		return false
	}
	if !visit(n) {
		return false
	}
	return walk(n.right, visit)
}

type board struct {
	root *node
	byID map[string]float64
}

// TreapStore is the in-memory Store implementation.
type TreapStore struct {
	mu     sync.RWMutex
	boards map[model.Role]*board
	rng    *rand.Rand
}

// NewTreapStore creates an empty leaderboard store.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		boards: map[model.Role]*board{},
		rng:    rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // priorities need no cryptographic strength
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TreapStore) board(role model.Role) *board {
	b := s.boards[role]
	if b == nil {
		b = &board{byID: map[string]float64{}}
		s.boards[role] = b
	}
	return b
}

// Update upserts the trust percent for a profile.
func (s *TreapStore) Update(_ context.Context, role model.Role, ownerID string, percent float64) error {
	if ownerID == "" || !role.Valid() {
		return ErrInvalidProfile
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.board(role)
	if old, ok := b.byID[ownerID]; ok {
		if old == percent {
			return nil
		}
		b.root = remove(b.root, old, ownerID)
	}
	b.root = insert(b.root, &node{id: ownerID, percent: percent, prio: uint64(s.rng.Int63())})
	b.byID[ownerID] = percent
	return nil
}

// Remove drops a profile from its role's leaderboard.
func (s *TreapStore) Remove(_ context.Context, role model.Role, ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.boards[role]
	if b == nil {
		return
	}
	if old, ok := b.byID[ownerID]; ok {
		b.root = remove(b.root, old, ownerID)
		delete(b.byID, ownerID)
	}
}

// Rank returns the current rank and percent for a profile.
func (s *TreapStore) Rank(_ context.Context, role model.Role, ownerID string) (model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := s.boards[role]
	if b == nil {
		return model.Entry{}, ErrNotFound
	}
	percent, ok := b.byID[ownerID]
	if !ok {
		return model.Entry{}, ErrNotFound
	}
	return model.Entry{
		Rank:    rankOf(b.root, percent, ownerID),
		Role:    role,
		OwnerID: ownerID,
		Percent: percent,
	}, nil
}

// TopN returns the best n entries for a role.
func (s *TreapStore) TopN(_ context.Context, role model.Role, n int) ([]model.Entry, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := s.boards[role]
	if b == nil {
		return []model.Entry{}, nil
	}
	entries := make([]model.Entry, 0, n)
	walk(b.root, func(x *node) bool {
		entries = append(entries, model.Entry{
			Rank:    len(entries) + 1,
			Role:    role,
			OwnerID: x.id,
			Percent: x.percent,
		})
		return len(entries) < n
	})
	return entries, nil
}

// Count returns the number of profiles tracked for a role.
func (s *TreapStore) Count(_ context.Context, role model.Role) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := s.boards[role]
	if b == nil {
		return 0
	}
	return len(b.byID)
}
