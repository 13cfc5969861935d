package ports

import (
	"DriverHelper/internal/core/domain"
	"context"
)

// RequestRepository defines persistence for driver requests. Only
// creation and pending-listing are in scope; the approval workflow for
// these requests lives with HR outside the bot.
type RequestRepository interface {
	// CreateAdvance inserts a new advance-payment request in pending status.
	CreateAdvance(ctx context.Context, req *domain.AdvancePaymentRequest) (*domain.AdvancePaymentRequest, error)

	// CreateVacation inserts a new vacation request in pending status.
	CreateVacation(ctx context.Context, req *domain.VacationRequest) (*domain.VacationRequest, error)

	// GetPending lists all requests still awaiting a decision.
	GetPending(ctx context.Context) ([]*domain.AdvancePaymentRequest, []*domain.VacationRequest, error)
}
