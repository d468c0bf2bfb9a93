package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Guide synthesis. One prompt, one model call, strict parse.
// There is no retry and no output repair: a response that does not decode to
// the steps schema is a SynthesisError. An empty steps array is a valid
// result, not every video is a tutorial.

const synthTranscriptMaxRunes = 24000 // max transcript runes sent to the model

// stripFences removes markdown code fences from model output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// BuildGuidePrompt assembles the synthesis prompt for one video.
func BuildGuidePrompt(meta VideoMetadata, transcript string) string {
	return fmt.Sprintf(guidePrompt, meta.Title, meta.Author, TruncateRunes(transcript, synthTranscriptMaxRunes, ""))
}

// Synthesize turns a transcript into ordered step candidates via the model.
func Synthesize(ctx context.Context, meta VideoMetadata, transcript string) ([]StepCandidate, error) {
	if Cfg.Model == nil {
		return nil, errors.New("no guide model configured")
	}

	IncrModelCall()
	raw, err := Cfg.Model.Generate(ctx, BuildGuidePrompt(meta, transcript))
	if err != nil {
		IncrModelError()
		return nil, fmt.Errorf("model call: %w", err)
	}

	var resp guideResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		IncrParseFailure()
		slog.Error("synthesize: unparseable model output",
			slog.String("title", meta.Title),
			slog.String("raw", Truncate(raw, 500)),
			slog.Any("err", err))
		return nil, &SynthesisError{Err: err}
	}
	return resp.Steps, nil
}
