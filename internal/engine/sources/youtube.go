package sources

import (
	"context"
	"log/slog"

	"github.com/anatolykoptev/go_guide/internal/engine"
)

// YouTube caption fetching is split across three files by responsibility:
//   youtube.go           — the Provider chaining the fetch tiers
//   youtube_innertube.go — Innertube API types, constants, and low-level HTTP primitives
//   youtube_captions.go  — per-tier fetching, track selection, timedtext parsing

// Provider fetches caption lines from public YouTube surfaces. Stateless;
// transport and browser client come from the engine config.
type Provider struct{}

var _ engine.CaptionProvider = (*Provider)(nil)

// NewProvider returns the production caption provider.
func NewProvider() *Provider { return &Provider{} }

// Fetch implements engine.CaptionProvider.
// Tier order: watch page scrape (works from any IP, language-aware) →
// engagement panel (default track only, works from datacenter IPs) →
// ANDROID player. The first tier that yields lines wins. A non-empty lang is
// strict: tiers that cannot honor it are skipped or fail.
func (p *Provider) Fetch(ctx context.Context, videoID, lang string) ([]engine.CaptionLine, error) {
	if lines, err := fetchViaWatchPage(ctx, videoID, lang); err == nil {
		return lines, nil
	} else {
		slog.Warn("captions: watch page failed, trying next tier",
			slog.String("id", videoID), slog.Any("err", err))
	}

	// The engagement panel returns whatever track YouTube considers default,
	// with no way to request a language. Only usable for the default rung.
	if lang == "" {
		if lines, err := fetchViaEngagementPanel(ctx, videoID); err == nil {
			return lines, nil
		} else {
			slog.Warn("captions: engagement panel failed, trying player",
				slog.String("id", videoID), slog.Any("err", err))
		}
	}

	return fetchViaPlayer(ctx, videoID, lang)
}
