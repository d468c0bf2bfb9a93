package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Transcript acquisition.
// Manual text short-circuits everything: no cache, no network, returned
// verbatim. Remote acquisition is a fixed two-rung ladder over the configured
// CaptionProvider: the preferred language first, then the provider default.
// Both rungs failing yields a TranscriptError telling the caller to paste the
// transcript manually.

type captionAttempt struct {
	name string
	lang string
}

// AcquireTranscript returns the timestamped transcript text for a video.
// lang overrides the configured preferred language for the first rung;
// empty lang means use the configured one.
func AcquireTranscript(ctx context.Context, videoID, manual, lang string) (string, error) {
	if strings.TrimSpace(manual) != "" {
		IncrManualTranscript()
		slog.Info("transcript: manual override", slog.String("id", videoID))
		return manual, nil
	}

	IncrTranscriptFetch()

	preferred := lang
	if preferred == "" {
		preferred = PreferredLang()
	}

	key := CacheKey("tr", videoID, preferred)
	if text, ok := CacheGetString(ctx, key); ok {
		return text, nil
	}

	if Cfg.Captions == nil {
		IncrTranscriptFailure()
		return "", &TranscriptError{VideoID: videoID, Err: errors.New("no caption provider configured")}
	}

	ladder := []captionAttempt{
		{name: "preferred", lang: preferred},
		{name: "default", lang: ""},
	}

	var lastErr error
	for i, attempt := range ladder {
		lines, err := Cfg.Captions.Fetch(ctx, videoID, attempt.lang)
		if err == nil && len(lines) == 0 {
			err = errors.New("empty caption track")
		}
		if err != nil {
			lastErr = err
			slog.Warn("transcript: attempt failed",
				slog.String("id", videoID),
				slog.String("attempt", attempt.name),
				slog.String("lang", attempt.lang),
				slog.Any("err", err))
			continue
		}
		if i > 0 {
			IncrTranscriptTier2()
		}
		text := FormatTranscript(lines)
		CacheSetString(ctx, key, text)
		return text, nil
	}

	IncrTranscriptFailure()
	return "", &TranscriptError{VideoID: videoID, Attempts: len(ladder), Err: lastErr}
}

// FormatTranscript renders caption lines as "[Ns] text" joined by newlines.
// Offsets are truncated to whole seconds.
func FormatTranscript(lines []CaptionLine) string {
	var sb strings.Builder
	for i, ln := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "[%ds] %s", int(ln.Start), ln.Text)
	}
	return sb.String()
}
