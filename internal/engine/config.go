package engine

import (
	"context"
	"net/http"
	"time"
)

// GuideModel produces raw model output for a prompt. The production
// implementation is GeminiModel; tests inject fakes.
type GuideModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CaptionProvider fetches ordered caption lines for a video. An empty lang
// requests the provider's default track; a non-empty lang must fail when no
// track of that language exists, so the acquirer's ladder stays meaningful.
type CaptionProvider interface {
	Fetch(ctx context.Context, videoID, lang string) ([]CaptionLine, error)
}

// ValidationPolicy controls post-synthesis step hygiene.
type ValidationPolicy string

const (
	// ValidationOff passes synthesizer candidates through untouched.
	ValidationOff ValidationPolicy = "off"
	// ValidationClamp clamps negative timestamps to 0 and fills empty titles.
	ValidationClamp ValidationPolicy = "clamp"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	Model                GuideModel      // nil = synthesis disabled
	Captions             CaptionProvider // nil = remote captions disabled, manual mode only
	PreferredLanguage    string          // first ladder rung language (default "en")
	OEmbedURL            string          // metadata endpoint base; default youtube oembed
	HTTPTimeout          time.Duration
	HTTPClient           *http.Client
	BrowserClient        *BrowserClient // nil = watch-page scrape uses the plain client
	Validation           ValidationPolicy
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	OutputDir            string // directory for exported artifacts (MCP tools)
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}

// GetHTTPClient returns the configured HTTP client, or a timeout-bounded
// default when none was injected.
func GetHTTPClient() *http.Client {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// PreferredLang returns the configured caption language, defaulting to "en".
func PreferredLang() string {
	if cfg.PreferredLanguage != "" {
		return cfg.PreferredLanguage
	}
	return "en"
}
