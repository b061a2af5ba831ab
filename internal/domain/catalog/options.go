// Package catalog holds the static, read-only badge registry.
package catalog

import "github.com/okian/vouch/internal/domain/model"

type settings struct {
	badges []model.BadgeDefinition
}

// Option applies a configuration option to a Catalog under construction.
type Option func(*settings)

// WithBadges replaces the built-in badge set. Empty input is ignored so a
// catalog is never constructed without definitions.
func WithBadges(defs []model.BadgeDefinition) Option {
	return func(s *settings) {
		if len(defs) > 0 {
			s.badges = defs
		}
	}
}

// WithExtraBadges appends definitions to the built-in badge set. Duplicate
// ids are dropped during construction.
func WithExtraBadges(defs []model.BadgeDefinition) Option {
	return func(s *settings) {
		s.badges = append(s.badges, defs...)
	}
}
