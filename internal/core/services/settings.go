package services

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driven"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyBaseURL           = "api.base_url"
	keyToken             = "api.token"
	keyTimeoutSeconds    = "api.timeout_seconds"
	keyRequestsPerSecond = "api.requests_per_second"
	keyMaxDepth          = "evaluation.max_depth"
	keyStrictReferences  = "evaluation.strict_references"
	keyOutputPath        = "output.path"
	keyWriteFormulas     = "output.write_formulas"
	keyCacheEnabled      = "cache.enabled"
	keyCacheDir          = "cache.dir"
)

// settingKind is the value type a key accepts.
type settingKind int

const (
	kindString settingKind = iota
	kindURL
	kindPositiveInt
	kindPositiveFloat
	kindBool
)

var settingKinds = map[string]settingKind{
	keyBaseURL:           kindURL,
	keyToken:             kindString,
	keyTimeoutSeconds:    kindPositiveInt,
	keyRequestsPerSecond: kindPositiveFloat,
	keyMaxDepth:          kindPositiveInt,
	keyStrictReferences:  kindBool,
	keyOutputPath:        kindString,
	keyWriteFormulas:     kindBool,
	keyCacheEnabled:      kindBool,
	keyCacheDir:          kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings. Missing or invalid values
// fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		API: domain.APISettings{
			BaseURL:           s.getString(keyBaseURL, defaults.API.BaseURL),
			Token:             s.configStore.GetString(keyToken),
			Timeout:           s.getSeconds(keyTimeoutSeconds, defaults.API.Timeout),
			RequestsPerSecond: s.getFloat(keyRequestsPerSecond, defaults.API.RequestsPerSecond),
		},
		Evaluation: domain.EvaluationSettings{
			MaxDepth:         s.getInt(keyMaxDepth, defaults.Evaluation.MaxDepth),
			StrictReferences: s.getBool(keyStrictReferences, defaults.Evaluation.StrictReferences),
		},
		Output: domain.OutputSettings{
			Path:          s.getString(keyOutputPath, defaults.Output.Path),
			WriteFormulas: s.getBool(keyWriteFormulas, defaults.Output.WriteFormulas),
		},
		Cache: domain.CacheSettings{
			Enabled: s.getBool(keyCacheEnabled, defaults.Cache.Enabled),
			Dir:     s.configStore.GetString(keyCacheDir),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyBaseURL, settings.API.BaseURL},
		{keyTimeoutSeconds, int(settings.API.Timeout / time.Second)},
		{keyRequestsPerSecond, settings.API.RequestsPerSecond},
		{keyMaxDepth, settings.Evaluation.MaxDepth},
		{keyStrictReferences, settings.Evaluation.StrictReferences},
		{keyOutputPath, settings.Output.Path},
		{keyWriteFormulas, settings.Output.WriteFormulas},
		{keyCacheEnabled, settings.Cache.Enabled},
		{keyCacheDir, settings.Cache.Dir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Only write the token if one is set so an empty struct never wipes it.
	if settings.API.Token != "" {
		if err := s.configStore.Set(keyToken, settings.API.Token); err != nil {
			return fmt.Errorf("save %s: %w", keyToken, err)
		}
	}
	return nil
}

// Set parses value for key and stores it.
func (s *SettingsService) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var parsed any
	switch kind {
	case kindString:
		if value == "" && key != keyCacheDir {
			return fmt.Errorf("%w: %s must not be empty", domain.ErrInvalidInput, key)
		}
		parsed = value
	case kindURL:
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %s must be an http or https URL", domain.ErrInvalidInput, key)
		}
		parsed = strings.TrimRight(value, "/")
	case kindPositiveInt:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindPositiveFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%w: %s must be a positive number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	}

	return s.configStore.Set(key, parsed)
}

// SetToken stores the API token.
func (s *SettingsService) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token must not be empty", domain.ErrInvalidInput)
	}
	return s.configStore.Set(keyToken, token)
}

// Keys lists the settable keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for key := range settingKinds {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if val := s.configStore.GetInt(key); val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if val := s.configStore.GetFloat(key); val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); exists {
		return s.configStore.GetBool(key)
	}
	return defaultVal
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if val := s.configStore.GetInt(key); val > 0 {
		return time.Duration(val) * time.Second
	}
	return defaultVal
}
