package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// Video metadata via the public oEmbed endpoint.
// Best-effort by contract: FetchMetadata never returns an error. A single
// request, no retry; anything that goes wrong degrades to per-field defaults
// so guide generation keeps moving.

const (
	defaultOEmbedURL = "https://www.youtube.com/oembed"

	fallbackTitle  = "YouTube Video"
	fallbackAuthor = "Unknown Creator"
)

type oembedResp struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// FetchMetadata returns title, author and thumbnail for a video ID.
// Missing fields fall back individually: a response without an author still
// keeps its real title. Full fetch failures return all three defaults.
func FetchMetadata(ctx context.Context, videoID string) VideoMetadata {
	IncrMetadataFetch()

	key := CacheKey("meta", videoID)
	if meta, ok := CacheLoadJSON[VideoMetadata](ctx, key); ok {
		return meta
	}

	meta := VideoMetadata{
		Title:     fallbackTitle,
		Author:    fallbackAuthor,
		Thumbnail: ThumbnailURL(videoID),
	}

	raw, err := fetchOEmbed(ctx, videoID)
	if err != nil {
		slog.Warn("metadata: oembed fetch failed, using defaults",
			slog.String("id", videoID), slog.Any("err", err))
		IncrMetadataFallback()
		return meta
	}

	var resp oembedResp
	if err := json.Unmarshal(raw, &resp); err != nil {
		slog.Warn("metadata: oembed decode failed, using defaults",
			slog.String("id", videoID), slog.Any("err", err))
		IncrMetadataFallback()
		return meta
	}

	if resp.Title != "" {
		meta.Title = resp.Title
	}
	if resp.AuthorName != "" {
		meta.Author = resp.AuthorName
	}
	if resp.ThumbnailURL != "" {
		meta.Thumbnail = resp.ThumbnailURL
	}

	CacheStoreJSON(ctx, key, meta)
	return meta
}

// fetchOEmbed performs the single oEmbed request. No retry here: metadata is
// cosmetic and a lost fetch only costs the default labels.
func fetchOEmbed(ctx context.Context, videoID string) ([]byte, error) {
	base := Cfg.OEmbedURL
	if base == "" {
		base = defaultOEmbedURL
	}
	params := url.Values{}
	params.Set("url", WatchURL(videoID))
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgentBot)
	req.Header.Set("Accept", "application/json")

	resp, err := GetHTTPClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("oembed HTTP %d: %s", resp.StatusCode, snippet)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 256*1024))
}
