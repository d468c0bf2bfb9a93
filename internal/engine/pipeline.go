package engine

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Guide pipeline orchestration. All-or-nothing: a run either ends in a full
// GuideData or in a single classified error, never a partial guide. Stage
// transitions are strictly forward and reported percent never decreases.

// Stage is a pipeline lifecycle state.
type Stage int

const (
	StageIdle Stage = iota
	StageResolving
	StageFetchingTranscript
	StageSynthesizing
	StageEnriching
	StageReady
	StageFailed
)

var stageNames = map[Stage]string{
	StageIdle:               "idle",
	StageResolving:          "resolving",
	StageFetchingTranscript: "fetching_transcript",
	StageSynthesizing:       "synthesizing",
	StageEnriching:          "enriching",
	StageReady:              "ready",
	StageFailed:             "failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Progress is one pipeline status report.
type Progress struct {
	Stage   Stage  `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// ProgressFunc receives status reports during a run. May be nil.
type ProgressFunc func(Progress)

// progressTracker enforces monotonic percent across emits.
type progressTracker struct {
	fn   ProgressFunc
	last int
}

func (p *progressTracker) emit(stage Stage, percent int, msg string) {
	if percent < p.last {
		percent = p.last
	}
	p.last = percent
	if p.fn != nil {
		p.fn(Progress{Stage: stage, Percent: percent, Message: msg})
	}
}

// GenerateGuide runs the full pipeline for one request.
// Metadata and transcript are fetched concurrently; metadata is best-effort
// and can never abort a run, the transcript can.
func GenerateGuide(ctx context.Context, req GuideRequest, onProgress ProgressFunc) (*GuideData, error) {
	log := slog.With(slog.String("run", uuid.NewString()))
	tracker := &progressTracker{fn: onProgress}

	fail := func(stage Stage, err error) (*GuideData, error) {
		IncrGuidesFailed()
		log.Error("pipeline: run failed",
			slog.String("stage", stage.String()), slog.Any("err", err))
		tracker.emit(StageFailed, tracker.last, UserMessage(err))
		return nil, err
	}

	tracker.emit(StageResolving, 5, "Resolving video link")
	videoID, err := ResolveVideoID(req.URL)
	if err != nil {
		return fail(StageResolving, err)
	}
	log = log.With(slog.String("id", videoID))

	tracker.emit(StageFetchingTranscript, 15, "Fetching transcript and metadata")
	var (
		meta       VideoMetadata
		transcript string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		meta = FetchMetadata(gctx, videoID)
		return nil
	})
	g.Go(func() error {
		var terr error
		transcript, terr = AcquireTranscript(gctx, videoID, req.ManualTranscript, req.Language)
		return terr
	})
	if err := g.Wait(); err != nil {
		return fail(StageFetchingTranscript, err)
	}

	tracker.emit(StageSynthesizing, 45, "Generating steps")
	var candidates []StepCandidate
	err = TrackOperation(ctx, "synthesize", func(ctx context.Context) error {
		var serr error
		candidates, serr = Synthesize(ctx, meta, transcript)
		return serr
	})
	if err != nil {
		return fail(StageSynthesizing, err)
	}

	tracker.emit(StageEnriching, 85, "Attaching media links")
	steps := EnrichSteps(videoID, NormalizeSteps(candidates))

	guide := &GuideData{
		Title:     meta.Title,
		Author:    meta.Author,
		Thumbnail: meta.Thumbnail,
		VideoID:   videoID,
		Steps:     steps,
	}
	IncrGuidesGenerated()
	log.Info("pipeline: guide ready", slog.Int("steps", len(steps)))
	tracker.emit(StageReady, 100, "Guide ready")
	return guide, nil
}

// FetchTranscriptResult resolves a URL and returns metadata plus the
// formatted transcript, without synthesis. Backs the transcript endpoint and
// the video_transcript tool.
func FetchTranscriptResult(ctx context.Context, req GuideRequest) (*TranscriptResult, error) {
	videoID, err := ResolveVideoID(req.URL)
	if err != nil {
		return nil, err
	}

	var (
		meta       VideoMetadata
		transcript string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		meta = FetchMetadata(gctx, videoID)
		return nil
	})
	g.Go(func() error {
		var terr error
		transcript, terr = AcquireTranscript(gctx, videoID, req.ManualTranscript, req.Language)
		return terr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &TranscriptResult{
		VideoID:    videoID,
		Title:      meta.Title,
		Author:     meta.Author,
		Thumbnail:  meta.Thumbnail,
		Transcript: transcript,
	}, nil
}
