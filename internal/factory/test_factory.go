package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cwmc/portable-launcher/internal/dependencies/mocks"
	"github.com/cwmc/portable-launcher/internal/services/auth"
	"github.com/cwmc/portable-launcher/internal/storage/memory"
	"github.com/cwmc/portable-launcher/internal/testutil"
)

// Admin credentials accepted by a TestApp
const (
	TestAdminUsername = "organizer"
	TestAdminPassword = "letmein"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	// MinCost keeps bcrypt fast in tests
	hash, err := bcrypt.GenerateFromPassword([]byte(TestAdminPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	authCfg := auth.Config{Username: TestAdminUsername, PasswordHash: string(hash)}

	app := newWithDependencies(store, mockClock, authCfg, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
