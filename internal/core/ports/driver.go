package ports

import (
	"DriverHelper/internal/core/domain"
	"context"
)

// DriverRepository defines the persistence operations for Drivers.
// Lookups that find nothing return (nil, nil); drivers are never
// hard-deleted by core flows.
type DriverRepository interface {
	// Create inserts a new driver and returns it with its storage id.
	Create(ctx context.Context, driver *domain.Driver) (*domain.Driver, error)

	// GetByTelegramID finds a driver by their Telegram chat identity.
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Driver, error)

	// GetByID finds a driver by storage id.
	GetByID(ctx context.Context, id int64) (*domain.Driver, error)

	// GetAll returns all drivers, newest first.
	GetAll(ctx context.Context) ([]*domain.Driver, error)

	// Update applies the non-nil fields of the patch and returns the
	// updated driver, or (nil, nil) if the id is unknown.
	Update(ctx context.Context, id int64, patch domain.DriverPatch) (*domain.Driver, error)

	// UpdateStatus is the single status-mutation path shared by the
	// command and button approval flows.
	UpdateStatus(ctx context.Context, id int64, status domain.DriverStatus) (*domain.Driver, error)
}
