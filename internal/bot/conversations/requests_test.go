package conversations

import (
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func TestAdvanceRequest_RejectsInvalidAmounts(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewAdvanceRequest(deps)

	session := textSession(domain.KindAdvanceRequest, 1, domain.AdvanceRequestData{})
	m.bot.On("SendMessage", mock.Anything, sentText("❌ Please enter a valid amount between 1 and 10000:")).
		Return(1, nil).Times(3)

	for _, input := range []string{"abc", "0", "10001"} {
		err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: input}, session)
		assert.NoError(t, err)
	}

	m.bot.AssertExpectations(t)
	// The step must not advance on invalid input
	m.sessions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdvanceRequest_ValidAmountAdvances(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewAdvanceRequest(deps)

	session := textSession(domain.KindAdvanceRequest, 1, domain.AdvanceRequestData{})
	m.sessions.On("Update", mock.Anything, int64(100), domain.KindAdvanceRequest, 2, domain.AdvanceRequestData{Amount: 500}).
		Return(session, nil).Once()
	m.bot.On("SendMessage", mock.Anything, sentText("📝 Please provide a reason for the advance payment request (at least 10 characters):")).
		Return(1, nil).Once()

	err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: "500"}, session)

	assert.NoError(t, err)
	m.sessions.AssertExpectations(t)
	m.bot.AssertExpectations(t)
}

func TestAdvanceRequest_RejectsShortReason(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewAdvanceRequest(deps)

	session := textSession(domain.KindAdvanceRequest, 2, domain.AdvanceRequestData{Amount: 500})
	m.bot.On("SendMessage", mock.Anything, sentText("❌ The reason is too short. Please describe why you need the advance (at least 10 characters):")).
		Return(1, nil).Once()

	err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: "rent"}, session)

	assert.NoError(t, err)
	m.bot.AssertExpectations(t)
	m.requests.AssertNotCalled(t, "CreateAdvance", mock.Anything, mock.Anything)
}

func TestAdvanceRequest_SubmitsAndEndsSession(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewAdvanceRequest(deps)

	driver := &domain.Driver{ID: 7, TelegramID: 100, FullName: "John Smith", Status: domain.StatusActive}
	session := textSession(domain.KindAdvanceRequest, 2, domain.AdvanceRequestData{Amount: 500})

	m.drivers.On("GetByTelegramID", mock.Anything, int64(100)).Return(driver, nil).Once()
	m.requests.On("CreateAdvance", mock.Anything, &domain.AdvancePaymentRequest{
		DriverID: 7,
		Amount:   500,
		Reason:   "truck repairs before the next haul",
	}).Return(&domain.AdvancePaymentRequest{
		ID:       3,
		DriverID: 7,
		Amount:   500,
		Reason:   "truck repairs before the next haul",
		Status:   domain.RequestPending,
	}, nil).Once()
	m.bus.On("Publish", mock.Anything, ports.TopicRequestCreated, mock.MatchedBy(func(e ports.RequestCreatedEvent) bool {
		return e.Driver.ID == 7 && e.Summary == "💰 Advance payment request #3\nAmount: $500.00\nReason: truck repairs before the next haul"
	})).Return(nil).Once()
	m.bot.On("SendMessage", mock.Anything, sentText("✅ Your advance payment request has been submitted! HR will review it shortly.")).
		Return(1, nil).Once()
	m.sessions.On("Delete", mock.Anything, int64(100), domain.KindAdvanceRequest).Return(nil).Once()

	err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: "truck repairs before the next haul"}, session)

	assert.NoError(t, err)
	m.drivers.AssertExpectations(t)
	m.requests.AssertExpectations(t)
	m.bus.AssertExpectations(t)
	m.sessions.AssertExpectations(t)
}

func TestVacationRequest_RejectsBadStartDates(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewVacationRequest(deps)

	session := textSession(domain.KindVacationRequest, 1, domain.VacationRequestData{})

	m.bot.On("SendMessage", mock.Anything, sentText(dateFormatHint)).Return(1, nil).Times(2)
	for _, input := range []string{"next monday", "2025-13-40"} {
		err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: input}, session)
		assert.NoError(t, err)
	}

	m.bot.On("SendMessage", mock.Anything, sentText("❌ The start date is in the past. Please enter a future date:")).
		Return(1, nil).Once()
	err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: "2020-01-01"}, session)
	assert.NoError(t, err)

	m.bot.AssertExpectations(t)
	m.sessions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVacationRequest_RejectsEndBeforeStart(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewVacationRequest(deps)

	start := futureDate(10)
	session := textSession(domain.KindVacationRequest, 2, domain.VacationRequestData{StartDate: start})
	m.bot.On("SendMessage", mock.Anything, sentText("❌ The end date must be after the start date. Please try again:")).
		Return(1, nil).Once()

	err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: futureDate(5)}, session)

	assert.NoError(t, err)
	m.bot.AssertExpectations(t)
	m.sessions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVacationRequest_SubmitsAndEndsSession(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewVacationRequest(deps)

	start, end := futureDate(10), futureDate(17)
	driver := &domain.Driver{ID: 7, TelegramID: 100, FullName: "John Smith", Status: domain.StatusActive}
	session := textSession(domain.KindVacationRequest, 3, domain.VacationRequestData{StartDate: start, EndDate: end})

	m.drivers.On("GetByTelegramID", mock.Anything, int64(100)).Return(driver, nil).Once()
	m.requests.On("CreateVacation", mock.Anything, &domain.VacationRequest{
		DriverID:  7,
		StartDate: start,
		EndDate:   end,
		Reason:    "family visit",
	}).Return(&domain.VacationRequest{
		ID:        4,
		DriverID:  7,
		StartDate: start,
		EndDate:   end,
		Reason:    "family visit",
		Status:    domain.RequestPending,
	}, nil).Once()
	m.bus.On("Publish", mock.Anything, ports.TopicRequestCreated, mock.MatchedBy(func(e ports.RequestCreatedEvent) bool {
		return e.Driver.ID == 7
	})).Return(nil).Once()
	m.bot.On("SendMessage", mock.Anything, sentText("✅ Your vacation request has been submitted! HR will review it shortly.")).
		Return(1, nil).Once()
	m.sessions.On("Delete", mock.Anything, int64(100), domain.KindVacationRequest).Return(nil).Once()

	err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: "family visit"}, session)

	assert.NoError(t, err)
	m.requests.AssertExpectations(t)
	m.bus.AssertExpectations(t)
	m.sessions.AssertExpectations(t)
}

// A corrupted payload ends the session instead of looping forever.
func TestAdvanceRequest_CorruptedPayloadAborts(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewAdvanceRequest(deps)

	session := textSession(domain.KindAdvanceRequest, 1, domain.VacationRequestData{})
	m.sessions.On("Delete", mock.Anything, int64(100), domain.KindAdvanceRequest).Return(nil).Once()
	m.bot.On("SendMessage", mock.Anything, sentText("❌ Your session is no longer valid. Please start again.")).
		Return(1, nil).Once()

	err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: "500"}, session)

	assert.NoError(t, err)
	m.sessions.AssertExpectations(t)
	m.bot.AssertExpectations(t)
}
