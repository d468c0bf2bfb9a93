package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Step enrichment. Pure string assembly: no network, no model calls.
// Model-provided link fields are always overwritten from the video ID so a
// hallucinated URL can never leak into a rendered guide.

// ThumbnailURL returns the stable hqdefault thumbnail for a video.
func ThumbnailURL(videoID string) string {
	return "https://img.youtube.com/vi/" + videoID + "/hqdefault.jpg"
}

// WatchURL returns the canonical watch page for a video.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// DeepLinkURL returns a watch URL that starts playback at the step timestamp.
func DeepLinkURL(videoID string, seconds int) string {
	return WatchURL(videoID) + "&t=" + strconv.Itoa(seconds) + "s"
}

// EnrichStep converts one synthesized step candidate into a presentable step.
func EnrichStep(videoID string, c StepCandidate) GuideStep {
	return GuideStep{
		Title:       c.Title,
		Description: c.Description,
		Timestamp:   c.Timestamp,
		ImageURL:    ThumbnailURL(videoID),
		VideoURL:    DeepLinkURL(videoID, c.Timestamp),
	}
}

// EnrichSteps enriches all candidates in order.
func EnrichSteps(videoID string, candidates []StepCandidate) []GuideStep {
	steps := make([]GuideStep, len(candidates))
	for i, c := range candidates {
		steps[i] = EnrichStep(videoID, c)
	}
	return steps
}

// NormalizeSteps applies the configured validation policy to raw candidates.
// ValidationOff returns them untouched. ValidationClamp floors negative
// timestamps at zero and fills empty titles with a positional name.
func NormalizeSteps(candidates []StepCandidate) []StepCandidate {
	if Cfg.Validation != ValidationClamp {
		return candidates
	}
	out := make([]StepCandidate, len(candidates))
	for i, c := range candidates {
		if c.Timestamp < 0 {
			c.Timestamp = 0
		}
		if strings.TrimSpace(c.Title) == "" {
			c.Title = fmt.Sprintf("Step %d", i+1)
		}
		out[i] = c
	}
	return out
}
