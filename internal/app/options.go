package service

import (
	"time"

	"github.com/okian/vouch/internal/adapters/ranking"
	"github.com/okian/vouch/internal/adapters/repository"
	"github.com/okian/vouch/internal/domain/catalog"
	"github.com/okian/vouch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence port.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLinks sets the external relationship collaborator.
func WithLinks(links LinkProvider) Option {
	return func(s *Service) {
		if links != nil {
			s.links = links
		}
	}
}

// WithPenalties sets the external bad-exit penalty collaborator.
func WithPenalties(penalties PenaltyProvider) Option {
	return func(s *Service) {
		if penalties != nil {
			s.penalties = penalties
		}
	}
}

// WithCatalog sets the badge registry.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithRanking sets the trust leaderboard store.
func WithRanking(r ranking.Store) Option {
	return func(s *Service) {
		if r != nil {
			s.ranks = r
		}
	}
}

// WithClock overrides the wall-clock source used for period keys, lock
// expiry, and trust windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithChangeListener registers a callback invoked with the document key
// after every persisted change.
func WithChangeListener(fn func(key string)) Option {
	return func(s *Service) {
		s.onChange = fn
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

// WithQueueSize bounds the intake queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of apply workers. The default of 1 keeps
// the ledger single-writer.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDedupeSize bounds the submission-id idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithTrustWindowMonths sets the trailing window for trust ratings.
func WithTrustWindowMonths(months int) Option {
	return func(s *Service) {
		if months > 0 {
			s.trustWindowMonths = months
		}
	}
}

// WithBackgroundLockMonths sets the lock applied after a background
// selection change.
func WithBackgroundLockMonths(months int) Option {
	return func(s *Service) {
		if months > 0 {
			s.lockMonths = months
		}
	}
}

// WithBlendWeights sets the initial expectations/growth split used when no
// persisted score configuration exists yet.
func WithBlendWeights(expectations, growth float64) Option {
	return func(s *Service) {
		if expectations >= 0 && growth >= 0 && expectations+growth > 0 {
			s.expectationsWeight = expectations
			s.growthWeight = growth
		}
	}
}
