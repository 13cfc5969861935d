package ports

import "DriverHelper/internal/core/domain"

// Event bus topics. Payloads are documented per topic.
const (
	// TopicDriverOnboarded fires when onboarding reaches its terminal
	// step. Payload: DriverOnboardedEvent.
	TopicDriverOnboarded = "driver:onboarded"

	// TopicDriverApproved / TopicDriverRejected fire from the shared
	// status-update routine. Payload: *domain.Driver (fresh state).
	TopicDriverApproved = "driver:approved"
	TopicDriverRejected = "driver:rejected"

	// TopicRequestCreated fires when an advance or vacation request is
	// committed. Payload: RequestCreatedEvent.
	TopicRequestCreated = "request:created"
)

// DriverOnboardedEvent announces a freshly submitted application.
type DriverOnboardedEvent struct {
	Driver *domain.Driver
	// Warnings collected from document analysis during onboarding; shown
	// to HR alongside the application, never blocking.
	AnalysisWarnings []string
}

// RequestCreatedEvent announces a new driver request for the HR channel.
type RequestCreatedEvent struct {
	Driver  *domain.Driver
	Summary string
}
