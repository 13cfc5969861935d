package postgres

import (
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"context"
	"encoding/base64"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type driverRepository struct {
	db     *DB
	secSvc ports.SecurityPort // Encrypts phone and CDL numbers at rest
	log    zerolog.Logger
}

var _ ports.DriverRepository = (*driverRepository)(nil) // Ensure compliance

// NewDriverRepository creates a new repository for driver operations.
func NewDriverRepository(db *DB, secSvc ports.SecurityPort, baseLogger *zerolog.Logger) ports.DriverRepository {
	return &driverRepository{
		db:     db,
		secSvc: secSvc,
		log:    baseLogger.With().Str("component", "driver_repo").Logger(),
	}
}

// encrypt seals a sensitive field for storage. Empty stays empty.
func (r *driverRepository) encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	encBytes, err := r.secSvc.Encrypt([]byte(plain))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(encBytes), nil
}

func (r *driverRepository) decrypt(enc string) (string, error) {
	if enc == "" {
		return "", nil
	}
	decBytes, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", err
	}
	plain, err := r.secSvc.Decrypt(decBytes)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

const driverQueryCols = `
	id, telegram_id, full_name, phone_number, cdl_number, cdl_expiry_date,
	dot_medical_certificate, dot_medical_expiry_date, driver_photo_url,
	cdl_photo_url, dot_medical_photo_url, status, onboarding_completed,
	created_at, updated_at
`

// scanDriver reads a row and decrypts the sensitive columns.
func (r *driverRepository) scanDriver(row pgx.Row) (*domain.Driver, error) {
	var (
		d                domain.Driver
		encPhone, encCDL string
	)
	err := row.Scan(
		&d.ID,
		&d.TelegramID,
		&d.FullName,
		&encPhone,
		&encCDL,
		&d.CDLExpiryDate,
		&d.DOTMedicalCertificate,
		&d.DOTMedicalExpiryDate,
		&d.DriverPhotoURL,
		&d.CDLPhotoURL,
		&d.DOTMedicalPhotoURL,
		&d.Status,
		&d.OnboardingCompleted,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		r.log.Error().Err(err).Msg("Failed to scan driver row")
		return nil, err
	}

	if d.PhoneNumber, err = r.decrypt(encPhone); err != nil {
		r.log.Error().Err(err).Int64("driver_id", d.ID).Msg("Failed to decrypt phone number (tampered?)")
		return nil, err
	}
	if d.CDLNumber, err = r.decrypt(encCDL); err != nil {
		r.log.Error().Err(err).Int64("driver_id", d.ID).Msg("Failed to decrypt CDL number (tampered?)")
		return nil, err
	}
	return &d, nil
}

// Create encrypts sensitive data and inserts a new driver.
func (r *driverRepository) Create(ctx context.Context, driver *domain.Driver) (*domain.Driver, error) {
	encPhone, err := r.encrypt(driver.PhoneNumber)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to encrypt phone number")
		return nil, err
	}
	encCDL, err := r.encrypt(driver.CDLNumber)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to encrypt CDL number")
		return nil, err
	}

	query := `
		INSERT INTO drivers (
			telegram_id, full_name, phone_number, cdl_number, cdl_expiry_date,
			dot_medical_certificate, dot_medical_expiry_date, driver_photo_url,
			cdl_photo_url, dot_medical_photo_url, status, onboarding_completed,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING ` + driverQueryCols

	row := r.db.pool.QueryRow(ctx, query,
		driver.TelegramID,
		driver.FullName,
		encPhone,
		encCDL,
		driver.CDLExpiryDate,
		driver.DOTMedicalCertificate,
		driver.DOTMedicalExpiryDate,
		driver.DriverPhotoURL,
		driver.CDLPhotoURL,
		driver.DOTMedicalPhotoURL,
		driver.Status,
		driver.OnboardingCompleted,
	)

	created, err := r.scanDriver(row)
	if err != nil {
		r.log.Error().Err(err).Int64("telegram_id", driver.TelegramID).Msg("Failed to insert new driver")
		return nil, err
	}
	return created, nil
}

// GetByTelegramID finds a driver by their Telegram chat identity.
func (r *driverRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Driver, error) {
	query := `SELECT ` + driverQueryCols + ` FROM drivers WHERE telegram_id = $1`

	row := r.db.pool.QueryRow(ctx, query, telegramID)
	driver, err := r.scanDriver(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Return nil, nil for "not found"
		}
		return nil, err
	}
	return driver, nil
}

// GetByID finds a driver by storage id.
func (r *driverRepository) GetByID(ctx context.Context, id int64) (*domain.Driver, error) {
	query := `SELECT ` + driverQueryCols + ` FROM drivers WHERE id = $1`

	row := r.db.pool.QueryRow(ctx, query, id)
	driver, err := r.scanDriver(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return driver, nil
}

// GetAll returns every driver, newest first.
func (r *driverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT ` + driverQueryCols + ` FROM drivers ORDER BY created_at DESC`

	rows, err := r.db.pool.Query(ctx, query)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to query drivers")
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		driver, err := r.scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	if err := rows.Err(); err != nil {
		r.log.Error().Err(err).Msg("Driver rows iteration failed")
		return nil, err
	}
	return drivers, nil
}

// Update applies the non-nil patch fields via COALESCE and returns the
// updated driver, or (nil, nil) when the id is unknown.
func (r *driverRepository) Update(ctx context.Context, id int64, patch domain.DriverPatch) (*domain.Driver, error) {
	var encPhone, encCDL *string
	if patch.PhoneNumber != nil {
		enc, err := r.encrypt(*patch.PhoneNumber)
		if err != nil {
			r.log.Error().Err(err).Msg("Failed to encrypt phone number")
			return nil, err
		}
		encPhone = &enc
	}
	if patch.CDLNumber != nil {
		enc, err := r.encrypt(*patch.CDLNumber)
		if err != nil {
			r.log.Error().Err(err).Msg("Failed to encrypt CDL number")
			return nil, err
		}
		encCDL = &enc
	}

	query := `
		UPDATE drivers
		SET
			full_name = COALESCE($2, full_name),
			phone_number = COALESCE($3, phone_number),
			cdl_number = COALESCE($4, cdl_number),
			cdl_expiry_date = COALESCE($5, cdl_expiry_date),
			dot_medical_certificate = COALESCE($6, dot_medical_certificate),
			dot_medical_expiry_date = COALESCE($7, dot_medical_expiry_date),
			driver_photo_url = COALESCE($8, driver_photo_url),
			cdl_photo_url = COALESCE($9, cdl_photo_url),
			dot_medical_photo_url = COALESCE($10, dot_medical_photo_url),
			status = COALESCE($11, status),
			onboarding_completed = COALESCE($12, onboarding_completed),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + driverQueryCols

	row := r.db.pool.QueryRow(ctx, query,
		id,
		patch.FullName,
		encPhone,
		encCDL,
		patch.CDLExpiryDate,
		patch.DOTMedicalCertificate,
		patch.DOTMedicalExpiryDate,
		patch.DriverPhotoURL,
		patch.CDLPhotoURL,
		patch.DOTMedicalPhotoURL,
		patch.Status,
		patch.OnboardingCompleted,
	)

	driver, err := r.scanDriver(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error().Err(err).Int64("driver_id", id).Msg("Failed to update driver")
		return nil, err
	}
	return driver, nil
}

// UpdateStatus sets only the status column. Both the command and the
// button approval paths converge here.
func (r *driverRepository) UpdateStatus(ctx context.Context, id int64, status domain.DriverStatus) (*domain.Driver, error) {
	query := `
		UPDATE drivers
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + driverQueryCols

	row := r.db.pool.QueryRow(ctx, query, id, status)
	driver, err := r.scanDriver(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error().Err(err).Int64("driver_id", id).Msg("Failed to update driver status")
		return nil, err
	}
	return driver, nil
}
