package handlers

import (
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// A fresh /start opens the onboarding form. The welcome clears any reply
// keyboard a previous menu left on screen.
func TestStart_NewUserBeginsOnboarding(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	handler := NewStartHandler(deps)

	m.drivers.On("GetByTelegramID", mock.Anything, int64(100)).Return(nil, nil).Once()
	m.sessions.On("Delete", mock.Anything, int64(100), domain.KindOnboarding).Return(nil).Once()
	m.sessions.On("Create", mock.Anything, int64(100), domain.KindOnboarding, 1, domain.OnboardingData{}).
		Return(&domain.Session{ID: 1}, nil).Once()
	m.bot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p ports.SendMessageParams) bool {
		return strings.HasPrefix(p.Text, "🚛 Welcome to Driver Onboarding!") &&
			p.RemoveKeyboard && p.ReplyMarkup == nil
	})).Return(1, nil).Once()

	err := handler.Handle(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Command: "start"})

	assert.NoError(t, err)
	m.drivers.AssertExpectations(t)
	m.sessions.AssertExpectations(t)
	m.bot.AssertExpectations(t)
}

// An onboarded driver gets the main menu, not a restarted form.
func TestStart_OnboardedDriverGetsMainMenu(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	handler := NewStartHandler(deps)

	driver := &domain.Driver{ID: 7, TelegramID: 100, FullName: "John Smith", Status: domain.StatusActive, OnboardingCompleted: true}
	m.drivers.On("GetByTelegramID", mock.Anything, int64(100)).Return(driver, nil).Once()
	m.bot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p ports.SendMessageParams) bool {
		return strings.HasPrefix(p.Text, "🚛 Welcome back, John Smith!") &&
			p.ReplyMarkup != nil && !p.ReplyMarkup.IsInline
	})).Return(1, nil).Once()

	err := handler.Handle(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Command: "start"})

	assert.NoError(t, err)
	m.drivers.AssertExpectations(t)
	m.bot.AssertExpectations(t)
	m.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
