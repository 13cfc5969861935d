package postgres

import (
	"DriverHelper/internal/adapters/security"
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"DriverHelper/internal/shared/config"
	"context"
	"encoding/hex"
	"log"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var (
	testDB     *DB
	testSecSvc ports.SecurityPort
	testTTL    = 24 * time.Hour
)

// TestMain sets up a connection to the test database.
func TestMain(m *testing.M) {
	// 1. Load config to get DB URL and Encryption Key.
	// We MUST load the .env file from the project root.
	// We need to go up 3 levels: /postgres -> /adapters -> /internal -> ROOT
	os.Chdir("../../../")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("TestMain: Failed to load config: %v", err)
	}

	// 2. Set up logger
	nopLogger := zerolog.Nop()

	// 3. Set up Security Service
	keyBytes, _ := hex.DecodeString(cfg.EncryptionKey)
	testSecSvc, err = security.NewAESService(keyBytes, &nopLogger)
	if err != nil {
		log.Fatalf("TestMain: Failed to create security service: %v", err)
	}

	// 4. Set up DB Connection
	testDB, err = NewDB(context.Background(), cfg.DatabaseURL, &nopLogger)
	if err != nil {
		log.Fatalf("TestMain: Failed to connect to test database: %v", err)
	}

	// 5. Run tests
	code := m.Run()

	// 6. Teardown
	testDB.Close()
	os.Exit(code)
}

// Helper to create a driver for testing
func createTestDriver(t *testing.T, repo ports.DriverRepository) (*domain.Driver, func()) {
	cdlExpiry := "2030-01-01"
	driver := &domain.Driver{
		TelegramID:            time.Now().UnixNano(),
		FullName:              "Test Driver",
		PhoneNumber:           "+1 555 000 1111",
		CDLNumber:             "CDL-TEST-123",
		CDLExpiryDate:         &cdlExpiry,
		DOTMedicalCertificate: "DOT-TEST-456",
		DriverPhotoURL:        "https://storage.example/drivers/test/photo.jpg",
		Status:                domain.StatusPending,
	}
	ctx := context.Background()
	created, err := repo.Create(ctx, driver)
	if err != nil {
		t.Fatalf("createTestDriver failed: %v", err)
	}

	cleanup := func() {
		cleanupTestDriver(t, created.ID)
	}
	return created, cleanup
}

// Helper to clean up the DB after tests
func cleanupTestDriver(t *testing.T, id int64) {
	_, err := testDB.pool.Exec(context.Background(), "DELETE FROM drivers WHERE id = $1", id)
	if err != nil {
		t.Logf("Warning: Failed to cleanup driver %d: %v", id, err)
	}
}

// Helper to clean up sessions for a user
func cleanupTestSessions(t *testing.T, telegramID int64) {
	_, err := testDB.pool.Exec(context.Background(), "DELETE FROM user_sessions WHERE telegram_id = $1", telegramID)
	if err != nil {
		t.Logf("Warning: Failed to cleanup sessions for %d: %v", telegramID, err)
	}
}
