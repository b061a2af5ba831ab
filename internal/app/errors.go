package service

import "errors"

// Sentinel kinds for engine errors.
//
// Configuration errors (unknown badge, role mismatch, wrong verifier) point
// at caller-side logic bugs; precondition failures (link state) are
// expected, user-recoverable conditions. Both are always surfaced to the
// immediate caller; only the best-effort batch path absorbs them.
var (
	ErrUnknownBadge       = errors.New("unknown badge")
	ErrBadgeRoleMismatch  = errors.New("badge does not match target role")
	ErrWrongVerifier      = errors.New("you cannot verify this badge")
	ErrNoActiveLink       = errors.New("no active link between parties")
	ErrNotWorkingTogether = errors.New("working together is not mutually enabled")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidValue       = errors.New("invalid checkin value")
	ErrInvalidStatus      = errors.New("invalid checkin status")
	ErrInvalidPeriodKey   = errors.New("invalid period key")
	ErrNotSnapBadge       = errors.New("badge is not a one-shot grant")
	ErrCheckinNotFound    = errors.New("checkin not found")
)
