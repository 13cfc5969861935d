package postgres

import (
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type sessionRepository struct {
	db  *DB
	ttl time.Duration
	log zerolog.Logger
}

var _ ports.SessionRepository = (*sessionRepository)(nil) // Ensure compliance

// NewSessionRepository creates a repository for conversation sessions.
// Every created session expires ttl from its creation time.
func NewSessionRepository(db *DB, ttl time.Duration, baseLogger *zerolog.Logger) ports.SessionRepository {
	return &sessionRepository{
		db:  db,
		ttl: ttl,
		log: baseLogger.With().Str("component", "session_repo").Logger(),
	}
}

const sessionQueryCols = `
	id, telegram_id, session_type, step, data, created_at, updated_at, expires_at
`

// scanSession reads a row and decodes the payload into its typed variant.
func (r *sessionRepository) scanSession(row pgx.Row) (*domain.Session, error) {
	var (
		s   domain.Session
		raw []byte
	)
	err := row.Scan(
		&s.ID,
		&s.TelegramID,
		&s.Kind,
		&s.Step,
		&raw,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		r.log.Error().Err(err).Msg("Failed to scan session row")
		return nil, err
	}

	s.Data, err = domain.DecodeSessionData(s.Kind, raw)
	if err != nil {
		r.log.Error().Err(err).Int64("telegram_id", s.TelegramID).Str("kind", string(s.Kind)).Msg("Failed to decode session data")
		return nil, err
	}
	return &s, nil
}

// Create inserts a new session for the (user, kind) pair.
func (r *sessionRepository) Create(ctx context.Context, telegramID int64, kind domain.SessionKind, step int, data domain.SessionData) (*domain.Session, error) {
	raw, err := domain.EncodeSessionData(data)
	if err != nil {
		r.log.Error().Err(err).Str("kind", string(kind)).Msg("Failed to encode session data")
		return nil, err
	}

	query := `
		INSERT INTO user_sessions (telegram_id, session_type, step, data, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW(), $5)
		RETURNING ` + sessionQueryCols

	expiresAt := time.Now().Add(r.ttl)
	row := r.db.pool.QueryRow(ctx, query, telegramID, kind, step, raw, expiresAt)
	session, err := r.scanSession(row)
	if err != nil {
		r.log.Error().Err(err).Int64("telegram_id", telegramID).Str("kind", string(kind)).Msg("Failed to insert session")
		return nil, err
	}
	return session, nil
}

// Get returns the newest non-expired session for the pair, or (nil, nil).
// Historic rows may linger until the sweeper runs; expiry filtering and
// newest-first ordering keep them invisible.
func (r *sessionRepository) Get(ctx context.Context, telegramID int64, kind domain.SessionKind) (*domain.Session, error) {
	query := `
		SELECT ` + sessionQueryCols + `
		FROM user_sessions
		WHERE telegram_id = $1 AND session_type = $2 AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1`

	row := r.db.pool.QueryRow(ctx, query, telegramID, kind)
	session, err := r.scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No live session is not an error
		}
		return nil, err
	}
	return session, nil
}

// Update replaces step and data of the live session, or (nil, nil) when
// there is none.
func (r *sessionRepository) Update(ctx context.Context, telegramID int64, kind domain.SessionKind, step int, data domain.SessionData) (*domain.Session, error) {
	raw, err := domain.EncodeSessionData(data)
	if err != nil {
		r.log.Error().Err(err).Str("kind", string(kind)).Msg("Failed to encode session data")
		return nil, err
	}

	query := `
		UPDATE user_sessions
		SET step = $3, data = $4, updated_at = NOW()
		WHERE telegram_id = $1 AND session_type = $2 AND expires_at > NOW()
		RETURNING ` + sessionQueryCols

	row := r.db.pool.QueryRow(ctx, query, telegramID, kind, step, raw)
	session, err := r.scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error().Err(err).Int64("telegram_id", telegramID).Str("kind", string(kind)).Msg("Failed to update session")
		return nil, err
	}
	return session, nil
}

// Delete removes all sessions for the pair, live or expired; idempotent.
func (r *sessionRepository) Delete(ctx context.Context, telegramID int64, kind domain.SessionKind) error {
	query := `DELETE FROM user_sessions WHERE telegram_id = $1 AND session_type = $2`

	if _, err := r.db.pool.Exec(ctx, query, telegramID, kind); err != nil {
		r.log.Error().Err(err).Int64("telegram_id", telegramID).Str("kind", string(kind)).Msg("Failed to delete session")
		return err
	}
	return nil
}

// DeleteExpired removes rows past their expiry and reports how many.
func (r *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.pool.Exec(ctx, `DELETE FROM user_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to delete expired sessions")
		return 0, err
	}
	return tag.RowsAffected(), nil
}
