// Package repository defines the versioned-document persistence port used
// by the reputation engine.
//
// The engine reads a whole collection, mutates it in memory, and writes the
// whole collection back; it never performs partial-collection writes. The
// port is synchronous from the engine's perspective and write failures are
// a host-layer concern (the engine does not retry).
package repository

import (
	"context"
	"encoding/json"
	"time"
)

// Well-known document keys. Version 2 is the current split layout;
// version 1 stored checkins and progress together under KeyLegacyBadges.
const (
	KeyCheckins     = "badge_checkins"
	KeySelections   = "badge_selections"
	KeyProgress     = "badge_progress"
	KeyLevelRules   = "level_rules"
	KeyScoreConfig  = "score_config"
	KeyLegacyBadges = "badges"
)

// Schema versions.
const (
	SchemaLegacy  = 1
	SchemaCurrent = 2
)

// Document is one versioned persisted collection.
type Document struct {
	SchemaVersion int             `json:"schema_version"`
	Data          json.RawMessage `json:"data"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Store provides read/write access to versioned documents.
type Store interface {
	// Read returns the document stored under key. ok is false when no
	// document exists; that is not an error.
	Read(ctx context.Context, key string) (doc Document, ok bool, err error)

	// Write replaces the document under key with a fresh update timestamp.
	Write(ctx context.Context, key string, schemaVersion int, data json.RawMessage) error
}
