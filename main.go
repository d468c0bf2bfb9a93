// go_guide turns YouTube videos into illustrated step-by-step guides.
//
// Resolves a video URL, fetches metadata and transcript, synthesizes numbered
// steps with Gemini, and links every step back to its moment in the video.
// Serves either the HTTP API (MODE=http, default) or the MCP tool surface
// (MODE=mcp): video_transcript, guide_generate, guide_export.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/anatolykoptev/go_guide/internal/api"
	"github.com/anatolykoptev/go_guide/internal/engine"
	"github.com/anatolykoptev/go_guide/internal/engine/sources"
	"github.com/anatolykoptev/go_guide/internal/guideserver"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	initEngine()

	mode := env.Str("MODE", "http")
	slog.Info("starting go_guide",
		slog.String("version", version),
		slog.String("mode", mode),
	)

	switch mode {
	case "http":
		runHTTP()
	case "mcp":
		runMCP()
	default:
		slog.Error("unknown MODE, want http or mcp", slog.String("mode", mode))
	}
}

func runHTTP() {
	addr := env.Str("HTTP_ADDR", ":8080")
	gin.SetMode(gin.ReleaseMode)
	r := api.NewRouter()

	slog.Info("http api listening", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func runMCP() {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_guide",
		Version: version,
	}, nil)

	guideserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 3))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_guide",
		Version:      version,
		Port:         env.Str("MCP_PORT", "8893"),
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		PreferredLanguage:    env.Str("PREFERRED_LANG", "en"),
		OEmbedURL:            env.Str("OEMBED_URL", ""),
		HTTPTimeout:          env.Duration("HTTP_TIMEOUT", 15*time.Second),
		Validation:           engine.ValidationPolicy(env.Str("VALIDATION", string(engine.ValidationOff))),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		OutputDir:            env.Str("OUTPUT_DIR", "."),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	c.Captions = sources.NewProvider()

	if apiKey := env.Str("GEMINI_API_KEY", ""); apiKey != "" {
		model, err := engine.NewGeminiModel(context.Background(), apiKey,
			env.Str("GUIDE_MODEL", "gemini-2.5-flash"),
			env.Float("GUIDE_RPS", 1))
		if err != nil {
			slog.Error("gemini init failed, synthesis disabled", slog.Any("error", err))
		} else {
			c.Model = model
		}
	} else {
		slog.Warn("GEMINI_API_KEY not set, synthesis disabled")
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}
