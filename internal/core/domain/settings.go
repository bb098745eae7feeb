package domain

import "time"

// Default setting values.
const (
	DefaultBaseURL           = "https://api.buildin.ai"
	DefaultTimeout           = 10 * time.Second
	DefaultRequestsPerSecond = 5.0
	DefaultMaxDepth          = 256
	DefaultOutputPath        = "output.xlsx"
)

// APISettings configures the remote table service.
type APISettings struct {
	// BaseURL is the API endpoint.
	BaseURL string

	// Token is the bearer token.
	Token string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// RequestsPerSecond is the proactive client-side throttle.
	RequestsPerSecond float64
}

// IsConfigured returns true if a token is present.
func (a APISettings) IsConfigured() bool {
	return a.Token != ""
}

// EvaluationSettings configures the formula engine.
type EvaluationSettings struct {
	// MaxDepth bounds the length of a dependency chain.
	MaxDepth int

	// StrictReferences makes references to missing cells fail instead of
	// evaluating to 0 or empty text.
	StrictReferences bool
}

// OutputSettings configures rendering.
type OutputSettings struct {
	// Path is the default workbook path.
	Path string

	// WriteFormulas also stores formula text in the workbook next to the
	// computed value.
	WriteFormulas bool
}

// CacheSettings configures the local table definition cache.
type CacheSettings struct {
	// Enabled turns the cache on.
	Enabled bool

	// Dir is the directory holding the cache database.
	// Empty means ~/.sheetlink/data.
	Dir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	API        APISettings
	Evaluation EvaluationSettings
	Output     OutputSettings
	Cache      CacheSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		API: APISettings{
			BaseURL:           DefaultBaseURL,
			Timeout:           DefaultTimeout,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Evaluation: EvaluationSettings{
			MaxDepth: DefaultMaxDepth,
		},
		Output: OutputSettings{
			Path: DefaultOutputPath,
		},
		Cache: CacheSettings{
			Enabled: true,
		},
	}
}
