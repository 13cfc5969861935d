package postgres

import (
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"context"

	"github.com/rs/zerolog"
)

type requestRepository struct {
	db  *DB
	log zerolog.Logger
}

var _ ports.RequestRepository = (*requestRepository)(nil) // Ensure compliance

// NewRequestRepository creates a repository for driver requests.
func NewRequestRepository(db *DB, baseLogger *zerolog.Logger) ports.RequestRepository {
	return &requestRepository{
		db:  db,
		log: baseLogger.With().Str("component", "request_repo").Logger(),
	}
}

// CreateAdvance inserts a new advance-payment request in pending status.
func (r *requestRepository) CreateAdvance(ctx context.Context, req *domain.AdvancePaymentRequest) (*domain.AdvancePaymentRequest, error) {
	query := `
		INSERT INTO advance_payment_requests (driver_id, amount, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, driver_id, amount, reason, status, created_at, updated_at`

	var out domain.AdvancePaymentRequest
	err := r.db.pool.QueryRow(ctx, query, req.DriverID, req.Amount, req.Reason, domain.RequestPending).Scan(
		&out.ID, &out.DriverID, &out.Amount, &out.Reason, &out.Status, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Int64("driver_id", req.DriverID).Msg("Failed to insert advance payment request")
		return nil, err
	}
	return &out, nil
}

// CreateVacation inserts a new vacation request in pending status.
func (r *requestRepository) CreateVacation(ctx context.Context, req *domain.VacationRequest) (*domain.VacationRequest, error) {
	query := `
		INSERT INTO vacation_requests (driver_id, start_date, end_date, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, driver_id, start_date, end_date, reason, status, created_at, updated_at`

	var out domain.VacationRequest
	err := r.db.pool.QueryRow(ctx, query, req.DriverID, req.StartDate, req.EndDate, req.Reason, domain.RequestPending).Scan(
		&out.ID, &out.DriverID, &out.StartDate, &out.EndDate, &out.Reason, &out.Status, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Int64("driver_id", req.DriverID).Msg("Failed to insert vacation request")
		return nil, err
	}
	return &out, nil
}

// GetPending lists all requests still awaiting a decision.
func (r *requestRepository) GetPending(ctx context.Context) ([]*domain.AdvancePaymentRequest, []*domain.VacationRequest, error) {
	var advances []*domain.AdvancePaymentRequest
	rows, err := r.db.pool.Query(ctx,
		`SELECT id, driver_id, amount, reason, status, created_at, updated_at
		 FROM advance_payment_requests WHERE status = $1 ORDER BY created_at`, domain.RequestPending)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to query pending advance requests")
		return nil, nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var a domain.AdvancePaymentRequest
		if err := rows.Scan(&a.ID, &a.DriverID, &a.Amount, &a.Reason, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, nil, err
		}
		advances = append(advances, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var vacations []*domain.VacationRequest
	vrows, err := r.db.pool.Query(ctx,
		`SELECT id, driver_id, start_date, end_date, reason, status, created_at, updated_at
		 FROM vacation_requests WHERE status = $1 ORDER BY created_at`, domain.RequestPending)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to query pending vacation requests")
		return nil, nil, err
	}
	defer vrows.Close()
	for vrows.Next() {
		var v domain.VacationRequest
		if err := vrows.Scan(&v.ID, &v.DriverID, &v.StartDate, &v.EndDate, &v.Reason, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, nil, err
		}
		vacations = append(vacations, &v)
	}
	if err := vrows.Err(); err != nil {
		return nil, nil, err
	}

	return advances, vacations, nil
}
