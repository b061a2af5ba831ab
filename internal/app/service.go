// Package service implements the badge & reputation scoring engine and the
// dependencies required by the HTTP API.
//
// The engine is synchronous and single-writer: every operation reads the
// relevant collection from the document store, mutates an in-memory copy,
// and writes the whole collection back. A coarse mutex keeps a single
// process safe; the asynchronous intake path additionally serializes ledger
// writes through the submission queue and its apply worker.
package service

import (
	"context"
	"sync"
	"time"

	submissionqueue "github.com/okian/vouch/internal/adapters/mq/queue"
	workerpool "github.com/okian/vouch/internal/adapters/mq/worker"
	"github.com/okian/vouch/internal/adapters/ranking"
	"github.com/okian/vouch/internal/adapters/repository"
	"github.com/okian/vouch/internal/domain/catalog"
	"github.com/okian/vouch/internal/domain/dedupe"
	"github.com/okian/vouch/internal/domain/model"
	"github.com/okian/vouch/pkg/logger"
	"github.com/okian/vouch/pkg/metrics"
)

// maxSelected caps both the active and the background badge lists.
const maxSelected = 4

// LinkProvider is the external relationship collaborator. A checkin is only
// accepted between parties whose link is ACTIVE with working-together
// mutually enabled.
type LinkProvider interface {
	Link(ctx context.Context, seekerID, retainerID string) (model.Link, bool)
}

// PenaltyProvider is the external bad-exit penalty collaborator, consulted
// for seeker profiles only.
type PenaltyProvider interface {
	ActiveBadExitPenaltyPercent(ctx context.Context, seekerID string) float64
}

// Service is the reputation engine plus its intake pipeline.
type Service struct {
	mu sync.Mutex

	// Ports.
	store     repository.Store
	links     LinkProvider
	penalties PenaltyProvider
	catalog   *catalog.Catalog
	ranks     ranking.Store
	now       func() time.Time
	onChange  func(key string)

	// Intake pipeline.
	deduper dedupe.Deduper
	queue   submissionqueue.Queue
	pool    *workerpool.Pool

	// Configuration.
	queueSize          int
	workerCount        int
	dedupeSize         int
	trustWindowMonths  int
	lockMonths         int
	expectationsWeight float64
	growthWeight       float64

	// State.
	startMu sync.Mutex
	started bool

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		now:                time.Now,
		queueSize:          100_000,
		workerCount:        1,
		dedupeSize:         500_000,
		trustWindowMonths:  12,
		lockMonths:         12,
		expectationsWeight: 0.65,
		growthWeight:       0.35,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start wires defaults for unset ports, runs the schema migration, and
// launches the intake pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.catalog == nil {
		s.catalog = catalog.New()
	}
	if s.ranks == nil {
		s.ranks = ranking.NewTreapStore()
	}
	if s.penalties == nil {
		s.penalties = noPenalties{}
	}
	if s.links == nil {
		s.links = noLinks{}
	}

	if err := s.migrateLegacy(ctx); err != nil {
		return err
	}
	s.seedLeaderboard(ctx)

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = submissionqueue.NewInMemoryQueue(
		submissionqueue.WithCapacity(s.queueSize),
	)
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s)
	s.pool.Start(ctx)

	if entries, err := s.loadCheckins(ctx); err == nil {
		metrics.UpdateLedgerEntries(len(entries))
	}

	s.started = true
	s.logger.Info(ctx, "reputation engine started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("badges", s.catalog.Len()),
	)
	return nil
}

// Stop shuts down the intake pipeline.
func (s *Service) Stop() {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping reputation engine...")
	if s.pool != nil {
		s.pool.Stop()
	}
	if q, ok := s.queue.(*submissionqueue.InMemoryQueue); ok {
		_ = q.Close()
	}
	s.started = false
	s.logger.Info(ctx, "reputation engine stopped")
}

// SeenAndRecord atomically checks and records an intake submission id.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordCheckinDuplicate()
	}
	return seen
}

// Unrecord forgets a submission id so the caller may retry after
// backpressure.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue hands a submission to the asynchronous intake path. Returns false
// on backpressure.
func (s *Service) Enqueue(ctx context.Context, sub model.CheckinSubmission) bool {
	return s.queue.Enqueue(ctx, sub)
}

// ApplySubmission is the worker-side entry: it submits one checkin and
// refreshes the target's leaderboard entry. Domain rejections come back as
// errors and are not retried.
func (s *Service) ApplySubmission(ctx context.Context, sub model.CheckinSubmission) error {
	if _, _, err := s.SubmitCheckin(ctx, sub); err != nil {
		return err
	}
	s.refreshRating(ctx, sub.TargetRole, sub.TargetID)
	return nil
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]interface{} {
	s.startMu.Lock()
	started := s.started
	s.startMu.Unlock()

	stats := map[string]interface{}{
		"started":     started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}
	if !started {
		return stats
	}
	stats["queueLength"] = s.queue.Len(ctx)
	stats["dedupeEntries"] = s.deduper.Size()
	if entries, err := s.loadCheckins(ctx); err == nil {
		stats["ledgerEntries"] = len(entries)
		metrics.UpdateLedgerEntries(len(entries))
	}
	seekers := s.ranks.Count(ctx, model.RoleSeeker)
	retainers := s.ranks.Count(ctx, model.RoleRetainer)
	stats["rankedSeekers"] = seekers
	stats["rankedRetainers"] = retainers
	metrics.UpdateTrackedProfiles(string(model.RoleSeeker), seekers)
	metrics.UpdateTrackedProfiles(string(model.RoleRetainer), retainers)
	return stats
}

// Catalog exposes the badge registry to read-side callers.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *Service) notify(key string) {
	if s.onChange != nil {
		s.onChange(key)
	}
}

// noPenalties is the default penalty collaborator: no active penalties.
type noPenalties struct{}

func (noPenalties) ActiveBadExitPenaltyPercent(context.Context, string) float64 { return 0 }

// noLinks is the default link collaborator: no links exist, so checkin
// submission always fails its precondition until a real provider is wired.
type noLinks struct{}

func (noLinks) Link(context.Context, string, string) (model.Link, bool) {
	return model.Link{}, false
}
