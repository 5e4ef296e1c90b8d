package log

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithRunID(t *testing.T) {
	ctx, runID := WithRunID(context.Background())

	assert.NotEmpty(t, runID)
	assert.Equal(t, runID, GetRunID(ctx))
	assert.Empty(t, GetRunID(context.Background()))
}

func TestWithFieldsInDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	SetupTestLogger()

	base := L.(*logger)

	// Campos fora da lista são descartados em desenvolvimento
	filtered := L.WithFields(Fields{"irrelevante": 1})
	assert.Same(t, base, filtered)

	kept := L.WithFields(Fields{"stage": "load", "irrelevante": 1}).(*logger)
	assert.Contains(t, kept.entry.Data, "stage")
	assert.NotContains(t, kept.entry.Data, "irrelevante")
}

func TestWithFieldsInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	SetupTestLogger()

	kept := L.WithFields(Fields{"irrelevante": 1}).(*logger)
	assert.Contains(t, kept.entry.Data, "irrelevante")
}

func TestForContextCarriesRunID(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	SetupTestLogger()

	ctx, runID := WithRunID(context.Background())

	entry := ForContext(ctx).WithField("bytes", 10).WithField("irrelevante", 1).(*logger).entry
	assert.Equal(t, runID, entry.Data["run_id"])
	assert.Equal(t, 10, entry.Data["bytes"])
	assert.NotContains(t, entry.Data, "irrelevante")
}
