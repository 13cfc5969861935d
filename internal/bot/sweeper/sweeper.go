package sweeper

import (
	"DriverHelper/internal/core/ports"
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sweeper periodically deletes expired sessions. Reads already filter
// on expiry, so the sweep is hygiene, not correctness: it keeps the
// sessions table from accumulating dead rows.
type Sweeper struct {
	log      zerolog.Logger
	sessions ports.SessionRepository
	cron     *cron.Cron
}

// NewSweeper creates the sweeper. Call Start to begin sweeping.
func NewSweeper(sessions ports.SessionRepository, baseLogger *zerolog.Logger) *Sweeper {
	return &Sweeper{
		log:      baseLogger.With().Str("component", "session_sweeper").Logger(),
		sessions: sessions,
		cron:     cron.New(),
	}
}

// Start schedules an hourly sweep.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Msg("Session sweeper started")
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Session sweeper stopped")
}

func (s *Sweeper) sweep() {
	n, err := s.sessions.DeleteExpired(context.Background())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to sweep expired sessions")
		return
	}
	if n > 0 {
		s.log.Info().Int64("deleted", n).Msg("Swept expired sessions")
	}
}
