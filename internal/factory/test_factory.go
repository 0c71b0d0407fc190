package factory

import (
	"context"
	"time"

	"github.com/sockdemon/gutterbot/internal/dependencies/mocks"
	"github.com/sockdemon/gutterbot/internal/services/mobs"
	"github.com/sockdemon/gutterbot/internal/storage/memory"
	"github.com/sockdemon/gutterbot/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	store := memory.New(mockClock)

	app := newWithDependencies(store, mockClock, mockRandom, Config{}, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// SeedPortals loads the default portal catalog into storage
func (t *TestApp) SeedPortals(ctx context.Context) error {
	return t.Store.SeedPortals(ctx, mobs.DefaultPortals())
}
