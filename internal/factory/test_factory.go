package factory

import (
	"time"

	"github.com/pickemleague/pickem-server/internal/dependencies/mocks"
	"github.com/pickemleague/pickem-server/internal/model"
	"github.com/pickemleague/pickem-server/internal/services/token"
	"github.com/pickemleague/pickem-server/internal/storage/memory"
	"github.com/pickemleague/pickem-server/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithScope(model.LockScopeWeek)
}

// NewTestAppWithScope creates a test App with a specific pick lock scope
func NewTestAppWithScope(scope model.LockScope) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC))

	tokenCfg := token.Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}

	app := newWithDependencies(store, mockClock, tokenCfg, scope, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
