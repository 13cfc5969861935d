package ports

import (
	"DriverHelper/internal/core/domain"
	"context"
)

// SessionRepository defines the persistence operations for conversation
// sessions, keyed by (telegram user id, kind).
//
// The store never returns an expired session. Creating over a live
// session is the caller's responsibility to avoid: delete first, then
// recreate (replace semantics with caller awareness).
type SessionRepository interface {
	// Create inserts a new session at the given step. Expiry is set by
	// the store from its configured TTL.
	Create(ctx context.Context, telegramID int64, kind domain.SessionKind, step int, data domain.SessionData) (*domain.Session, error)

	// Get returns the newest live session for the pair, or (nil, nil).
	Get(ctx context.Context, telegramID int64, kind domain.SessionKind) (*domain.Session, error)

	// Update replaces step and data of the live session for the pair and
	// returns it, or (nil, nil) when no live session exists. Callers must
	// check for the absent case.
	Update(ctx context.Context, telegramID int64, kind domain.SessionKind, step int, data domain.SessionData) (*domain.Session, error)

	// Delete removes any sessions for the pair; idempotent.
	Delete(ctx context.Context, telegramID int64, kind domain.SessionKind) error

	// DeleteExpired physically removes rows past their expiry. Reads
	// already filter on expiry, so this is housekeeping, not correctness.
	DeleteExpired(ctx context.Context) (int64, error)
}
