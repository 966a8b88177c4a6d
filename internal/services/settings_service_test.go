package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vytor/flashcardhelper/internal/errors"
	"github.com/vytor/flashcardhelper/internal/models"
	"github.com/vytor/flashcardhelper/internal/repository/sqlite"
	"github.com/vytor/flashcardhelper/internal/services"
	"github.com/vytor/flashcardhelper/internal/testutil"
)

func newSettings(t *testing.T) (services.SettingsService, func() services.SettingsService) {
	t.Helper()
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })

	repo := sqlite.NewSlotRepository(db)
	svc := services.NewSettingsService(repo)
	require.NoError(t, svc.Load(context.Background()))

	reload := func() services.SettingsService {
		fresh := services.NewSettingsService(repo)
		require.NoError(t, fresh.Load(context.Background()))
		return fresh
	}
	return svc, reload
}

func TestSettings_Defaults(t *testing.T) {
	svc, _ := newSettings(t)

	assert.Equal(t, models.ProviderGemini, svc.Provider())
	assert.Equal(t, models.AIConfig{Provider: models.ProviderGemini}, svc.Active())
	assert.False(t, svc.Active().HasKey())
}

func TestSettings_ActiveKeyFollowsProvider(t *testing.T) {
	ctx := context.Background()
	svc, reload := newSettings(t)

	require.NoError(t, svc.SetAPIKey(ctx, models.ProviderGemini, " g-key "))
	require.NoError(t, svc.SetAPIKey(ctx, models.ProviderClaude, "c-key"))

	assert.Equal(t, models.AIConfig{Provider: models.ProviderGemini, APIKey: "g-key"}, svc.Active())

	require.NoError(t, svc.SetProvider(ctx, "Claude"))
	assert.Equal(t, models.AIConfig{Provider: models.ProviderClaude, APIKey: "c-key"}, svc.Active())

	fresh := reload()
	assert.Equal(t, models.ProviderClaude, fresh.Provider())
	assert.Equal(t, "g-key", fresh.APIKey(models.ProviderGemini))
	assert.Equal(t, "c-key", fresh.APIKey(models.ProviderClaude))
}

func TestSettings_RejectsUnknownProvider(t *testing.T) {
	svc, _ := newSettings(t)

	err := svc.SetProvider(context.Background(), "openai")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))

	err = svc.SetAPIKey(context.Background(), "openai", "k")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))

	assert.Equal(t, models.ProviderGemini, svc.Provider())
}

func TestSettings_StoredValuesAreJSONStrings(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	repo := sqlite.NewSlotRepository(db)

	svc := services.NewSettingsService(repo)
	require.NoError(t, svc.SetProvider(ctx, models.ProviderClaude))
	require.NoError(t, svc.SetAPIKey(ctx, models.ProviderClaude, "sk-1"))

	raw, found, err := repo.Get(ctx, "ai_provider")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `"claude"`, raw)

	raw, _, err = repo.Get(ctx, "claude_api_key")
	require.NoError(t, err)
	assert.Equal(t, `"sk-1"`, raw)
}

func TestSettings_CorruptOrUnknownStoredValues(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	repo := sqlite.NewSlotRepository(db)

	require.NoError(t, repo.Put(ctx, "ai_provider", `"mistral"`))
	require.NoError(t, repo.Put(ctx, "gemini_api_key", `not-json`))

	svc := services.NewSettingsService(repo)
	require.NoError(t, svc.Load(ctx))

	assert.Equal(t, models.ProviderGemini, svc.Provider())
	assert.Empty(t, svc.APIKey(models.ProviderGemini))
}
