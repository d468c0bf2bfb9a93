package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	GuidesGenerated     atomic.Int64
	GuidesFailed        atomic.Int64
	MetadataFetches     atomic.Int64
	MetadataFallbacks   atomic.Int64
	TranscriptFetches   atomic.Int64
	TranscriptTier2Hits atomic.Int64
	TranscriptFailures  atomic.Int64
	ManualTranscripts   atomic.Int64
	ModelCalls          atomic.Int64
	ModelErrors         atomic.Int64
	ParseFailures       atomic.Int64
	ExportsPDF          atomic.Int64
	ExportsMarkdown     atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"guides_generated":       metrics.GuidesGenerated.Load(),
		"guides_failed":          metrics.GuidesFailed.Load(),
		"metadata_fetches":       metrics.MetadataFetches.Load(),
		"metadata_fallbacks":     metrics.MetadataFallbacks.Load(),
		"transcript_fetches":     metrics.TranscriptFetches.Load(),
		"transcript_tier2_hits":  metrics.TranscriptTier2Hits.Load(),
		"transcript_failures":    metrics.TranscriptFailures.Load(),
		"manual_transcripts":     metrics.ManualTranscripts.Load(),
		"model_calls":            metrics.ModelCalls.Load(),
		"model_errors":           metrics.ModelErrors.Load(),
		"model_parse_failures":   metrics.ParseFailures.Load(),
		"exports_pdf":            metrics.ExportsPDF.Load(),
		"exports_markdown":       metrics.ExportsMarkdown.Load(),
		"cache_hits":             hits,
		"cache_misses":           misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"guides_generated", "guides_failed",
		"metadata_fetches", "metadata_fallbacks",
		"transcript_fetches", "transcript_tier2_hits", "transcript_failures", "manual_transcripts",
		"model_calls", "model_errors", "model_parse_failures",
		"exports_pdf", "exports_markdown",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the pipeline.
func IncrGuidesGenerated()   { metrics.GuidesGenerated.Add(1) }
func IncrGuidesFailed()      { metrics.GuidesFailed.Add(1) }
func IncrMetadataFetch()     { metrics.MetadataFetches.Add(1) }
func IncrMetadataFallback()  { metrics.MetadataFallbacks.Add(1) }
func IncrTranscriptFetch()   { metrics.TranscriptFetches.Add(1) }
func IncrTranscriptTier2()   { metrics.TranscriptTier2Hits.Add(1) }
func IncrTranscriptFailure() { metrics.TranscriptFailures.Add(1) }
func IncrManualTranscript()  { metrics.ManualTranscripts.Add(1) }
func IncrModelCall()         { metrics.ModelCalls.Add(1) }
func IncrModelError()        { metrics.ModelErrors.Add(1) }
func IncrParseFailure()      { metrics.ParseFailures.Add(1) }

// Incrementors for the export layer.
func IncrExportPDF()      { metrics.ExportsPDF.Add(1) }
func IncrExportMarkdown() { metrics.ExportsMarkdown.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
