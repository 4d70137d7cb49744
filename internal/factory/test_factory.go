package factory

import (
	"context"
	"time"

	"github.com/mcoot/impostorgame/internal/dependencies/mocks"
	"github.com/mcoot/impostorgame/internal/storage/memory"
	"github.com/mcoot/impostorgame/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIDs    *mocks.SequentialIDs
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewSequentialIDs("player")

	app := newWithDependencies(store, mockClock, mockRandom, mockIDs, nil, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIDs:    mockIDs,
	}
}

// LoadTestWords loads a small themed word list for testing
func (t *TestApp) LoadTestWords(ctx context.Context) error {
	themes := map[string][]string{
		"Comidas": {"Tacos", "Paella", "Empanadas"},
		"Lugares": {"Playa", "Museo", "Estadio"},
	}
	for theme, words := range themes {
		if err := t.WordBank.LoadWords(ctx, theme, words); err != nil {
			return err
		}
	}
	return nil
}
