package domain

import "time"

// RequestStatus is a custom type for the request ENUM
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// AdvancePaymentRequest is a driver's request for an advance on pay.
type AdvancePaymentRequest struct {
	ID        int64
	DriverID  int64
	Amount    float64
	Reason    string
	Status    RequestStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VacationRequest is a driver's request for time off.
type VacationRequest struct {
	ID        int64
	DriverID  int64
	StartDate string
	EndDate   string
	Reason    string
	Status    RequestStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
