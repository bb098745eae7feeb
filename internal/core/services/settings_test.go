package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sheetlink/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults, *settings)
	assert.False(t, settings.API.IsConfigured())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("api.base_url", "https://tables.example.com")
	_ = store.Set("api.token", "tok")
	_ = store.Set("api.timeout_seconds", 30)
	_ = store.Set("api.requests_per_second", 2.5)
	_ = store.Set("evaluation.max_depth", 64)
	_ = store.Set("evaluation.strict_references", true)
	_ = store.Set("output.write_formulas", true)
	_ = store.Set("cache.enabled", false)

	service := NewSettingsService(store)
	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "https://tables.example.com", settings.API.BaseURL)
	assert.True(t, settings.API.IsConfigured())
	assert.Equal(t, 30*time.Second, settings.API.Timeout)
	assert.InDelta(t, 2.5, settings.API.RequestsPerSecond, 1e-9)
	assert.Equal(t, 64, settings.Evaluation.MaxDepth)
	assert.True(t, settings.Evaluation.StrictReferences)
	assert.True(t, settings.Output.WriteFormulas)
	assert.False(t, settings.Cache.Enabled)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("evaluation.max_depth", -4)
	_ = store.Set("api.timeout_seconds", "soon")

	service := NewSettingsService(store)
	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMaxDepth, settings.Evaluation.MaxDepth)
	assert.Equal(t, domain.DefaultTimeout, settings.API.Timeout)
}

func TestSettingsService_Save(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := domain.DefaultAppSettings()
	settings.API.Token = "secret"
	settings.API.Timeout = 45 * time.Second
	settings.Evaluation.MaxDepth = 12
	settings.Output.Path = "report.xlsx"

	require.NoError(t, service.Save(&settings))

	retrieved, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *retrieved)
}

func TestSettingsService_Save_KeepsTokenWhenEmpty(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("api.token", "keep-me")
	service := NewSettingsService(store)

	settings := domain.DefaultAppSettings()
	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "keep-me", store.GetString("api.token"))
}

func TestSettingsService_Set_Valid(t *testing.T) {
	tests := []struct {
		key      string
		value    string
		expected any
	}{
		{"api.base_url", "https://example.com/", "https://example.com"},
		{"api.timeout_seconds", "20", 20},
		{"api.requests_per_second", "0.5", 0.5},
		{"evaluation.max_depth", "100", 100},
		{"evaluation.strict_references", "true", true},
		{"output.path", "book.xlsx", "book.xlsx"},
		{"output.write_formulas", "false", false},
		{"cache.dir", "", ""},
		{"  CACHE.ENABLED ", "1", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store)

			require.NoError(t, service.Set(tt.key, tt.value))

			for _, key := range service.Keys() {
				if val, ok := store.Get(key); ok {
					assert.Equal(t, tt.expected, val)
				}
			}
		})
	}
}

func TestSettingsService_Set_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"unknown.key", "x"},
		{"api.base_url", "ftp://example.com"},
		{"api.base_url", "not a url"},
		{"api.timeout_seconds", "0"},
		{"api.requests_per_second", "-1"},
		{"evaluation.max_depth", "deep"},
		{"evaluation.strict_references", "maybe"},
		{"output.path", "  "},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore())
			err := service.Set(tt.key, tt.value)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_SetToken(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.SetToken("  abc  "))
	assert.Equal(t, "abc", store.GetString("api.token"))

	assert.ErrorIs(t, service.SetToken(" "), domain.ErrInvalidInput)
}

func TestSettingsService_Keys_Sorted(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	keys := service.Keys()

	assert.Len(t, keys, 10)
	assert.IsNonDecreasing(t, keys)
	assert.Contains(t, keys, "evaluation.max_depth")
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
