package conversations

import (
	"DriverHelper/internal/bot"
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"DriverHelper/internal/shared/config"
	"context"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

// MockDriverRepository
type MockDriverRepository struct {
	mock.Mock
}

var _ ports.DriverRepository = (*MockDriverRepository)(nil)

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) (*domain.Driver, error) {
	args := m.Called(ctx, driver)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}
func (m *MockDriverRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Driver, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}
func (m *MockDriverRepository) GetByID(ctx context.Context, id int64) (*domain.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}
func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Driver), args.Error(1)
}
func (m *MockDriverRepository) Update(ctx context.Context, id int64, patch domain.DriverPatch) (*domain.Driver, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}
func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id int64, status domain.DriverStatus) (*domain.Driver, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}

// MockSessionRepository
type MockSessionRepository struct {
	mock.Mock
}

var _ ports.SessionRepository = (*MockSessionRepository)(nil)

func (m *MockSessionRepository) Create(ctx context.Context, telegramID int64, kind domain.SessionKind, step int, data domain.SessionData) (*domain.Session, error) {
	args := m.Called(ctx, telegramID, kind, step, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockSessionRepository) Get(ctx context.Context, telegramID int64, kind domain.SessionKind) (*domain.Session, error) {
	args := m.Called(ctx, telegramID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockSessionRepository) Update(ctx context.Context, telegramID int64, kind domain.SessionKind, step int, data domain.SessionData) (*domain.Session, error) {
	args := m.Called(ctx, telegramID, kind, step, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockSessionRepository) Delete(ctx context.Context, telegramID int64, kind domain.SessionKind) error {
	args := m.Called(ctx, telegramID, kind)
	return args.Error(0)
}
func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockRequestRepository
type MockRequestRepository struct {
	mock.Mock
}

var _ ports.RequestRepository = (*MockRequestRepository)(nil)

func (m *MockRequestRepository) CreateAdvance(ctx context.Context, req *domain.AdvancePaymentRequest) (*domain.AdvancePaymentRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdvancePaymentRequest), args.Error(1)
}
func (m *MockRequestRepository) CreateVacation(ctx context.Context, req *domain.VacationRequest) (*domain.VacationRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VacationRequest), args.Error(1)
}
func (m *MockRequestRepository) GetPending(ctx context.Context) ([]*domain.AdvancePaymentRequest, []*domain.VacationRequest, error) {
	args := m.Called(ctx)
	var advances []*domain.AdvancePaymentRequest
	var vacations []*domain.VacationRequest
	if args.Get(0) != nil {
		advances = args.Get(0).([]*domain.AdvancePaymentRequest)
	}
	if args.Get(1) != nil {
		vacations = args.Get(1).([]*domain.VacationRequest)
	}
	return advances, vacations, args.Error(2)
}

// MockBotClient is a mock for the BotClientPort
type MockBotClient struct {
	mock.Mock
}

var _ ports.BotClientPort = (*MockBotClient)(nil)

func (m *MockBotClient) SendMessage(ctx context.Context, params ports.SendMessageParams) (int, error) {
	args := m.Called(ctx, params)
	return args.Int(0), args.Error(1)
}
func (m *MockBotClient) AnswerCallbackQuery(ctx context.Context, params ports.AnswerCallbackParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}
func (m *MockBotClient) GetFileBytes(ctx context.Context, fileID string) ([]byte, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockDocumentStorage
type MockDocumentStorage struct {
	mock.Mock
}

var _ ports.DocumentStorage = (*MockDocumentStorage)(nil)

func (m *MockDocumentStorage) Upload(ctx context.Context, data []byte, keyHint string, contentType string) (string, error) {
	args := m.Called(ctx, data, keyHint, contentType)
	return args.String(0), args.Error(1)
}
func (m *MockDocumentStorage) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// MockDocumentAnalyzer
type MockDocumentAnalyzer struct {
	mock.Mock
}

var _ ports.DocumentAnalyzer = (*MockDocumentAnalyzer)(nil)

func (m *MockDocumentAnalyzer) Analyze(ctx context.Context, documentURL string, documentType string) (*ports.AnalysisResult, error) {
	args := m.Called(ctx, documentURL, documentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.AnalysisResult), args.Error(1)
}

// MockEventBus
type MockEventBus struct {
	mock.Mock
}

var _ ports.EventBus = (*MockEventBus)(nil)

func (m *MockEventBus) Publish(ctx context.Context, topic string, data interface{}) error {
	args := m.Called(ctx, topic, data)
	return args.Error(0)
}
func (m *MockEventBus) Subscribe(topic string, handler ports.EventHandler) {
	m.Called(topic, handler)
}

// --- Helpers ---

type testMocks struct {
	drivers  *MockDriverRepository
	sessions *MockSessionRepository
	requests *MockRequestRepository
	storage  *MockDocumentStorage
	analyzer *MockDocumentAnalyzer
	bot      *MockBotClient
	bus      *MockEventBus
}

func newTestDeps() (*bot.Deps, *testMocks) {
	nopLogger := zerolog.Nop()
	m := &testMocks{
		drivers:  new(MockDriverRepository),
		sessions: new(MockSessionRepository),
		requests: new(MockRequestRepository),
		storage:  new(MockDocumentStorage),
		analyzer: new(MockDocumentAnalyzer),
		bot:      new(MockBotClient),
		bus:      new(MockEventBus),
	}
	deps := &bot.Deps{
		Cfg: &config.Config{
			Bot: config.BotConfig{HRChannelID: -1001, SupportChannelID: -1002},
		},
		Drivers:  m.drivers,
		Sessions: m.sessions,
		Requests: m.requests,
		Storage:  m.storage,
		Analyzer: m.analyzer,
		Bot:      m.bot,
		Bus:      m.bus,
		Log:      &nopLogger,
	}
	return deps, m
}

func sentText(text string) interface{} {
	return mock.MatchedBy(func(p ports.SendMessageParams) bool {
		return p.Text == text
	})
}

func textSession(kind domain.SessionKind, step int, data domain.SessionData) *domain.Session {
	return &domain.Session{ID: 1, TelegramID: 100, Kind: kind, Step: step, Data: data}
}
