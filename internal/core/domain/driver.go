package domain

import "time"

// DriverStatus is a custom type for the driver lifecycle ENUM
type DriverStatus string

const (
	StatusPending   DriverStatus = "pending"
	StatusActive    DriverStatus = "active"
	StatusInactive  DriverStatus = "inactive"
	StatusSuspended DriverStatus = "suspended"
)

// Driver represents a registered (or registering) truck driver.
// ID is the storage identity used for lookups and relay correlation;
// TelegramID is used strictly for transport addressing.
type Driver struct {
	ID                    int64
	TelegramID            int64
	FullName              string
	PhoneNumber           string // Encrypted at rest
	CDLNumber             string // Encrypted at rest
	CDLExpiryDate         *string
	DOTMedicalCertificate string
	DOTMedicalExpiryDate  *string
	DriverPhotoURL        string
	CDLPhotoURL           string
	DOTMedicalPhotoURL    string
	Status                DriverStatus
	OnboardingCompleted   bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// DriverPatch is a partial update; nil fields are left untouched.
type DriverPatch struct {
	FullName              *string
	PhoneNumber           *string
	CDLNumber             *string
	CDLExpiryDate         *string
	DOTMedicalCertificate *string
	DOTMedicalExpiryDate  *string
	DriverPhotoURL        *string
	CDLPhotoURL           *string
	DOTMedicalPhotoURL    *string
	Status                *DriverStatus
	OnboardingCompleted   *bool
}

// StatusEmoji returns the marker used in driver-facing status messages.
func (s DriverStatus) StatusEmoji() string {
	switch s {
	case StatusPending:
		return "⏳"
	case StatusActive:
		return "✅"
	case StatusInactive:
		return "❌"
	case StatusSuspended:
		return "⚠️"
	default:
		return "❓"
	}
}
