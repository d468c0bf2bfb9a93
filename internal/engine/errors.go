package engine

import (
	"errors"
	"fmt"
)

// Error taxonomy of the guide pipeline. Every fatal kind maps to exactly one
// user-facing message via UserMessage; Error() strings are for logs.

// ResolutionError means the input URL yielded no valid video identifier.
// Always pre-network.
type ResolutionError struct {
	Input string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no video id in %q", e.Input)
}

// TranscriptError means every transcript source was exhausted.
type TranscriptError struct {
	VideoID  string
	Attempts int
	Err      error // last rung's error
}

func (e *TranscriptError) Error() string {
	return fmt.Sprintf("transcript unavailable for %s after %d attempts: %v", e.VideoID, e.Attempts, e.Err)
}

func (e *TranscriptError) Unwrap() error { return e.Err }

// SynthesisError means the model responded but its output did not parse as
// the required JSON shape. The raw output is logged, never surfaced.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("unparseable model output: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// User-facing messages, one per fatal kind.
const (
	msgInvalidURL     = "Invalid URL"
	msgTranscriptFail = "Could not retrieve a transcript automatically. Paste the transcript manually and try again."
	msgSynthesisFail  = "Failed to parse AI response"
	msgGenericFail    = "Guide generation failed. Please try again."
)

// UserMessage maps a pipeline error to the single message shown to the caller.
func UserMessage(err error) string {
	var re *ResolutionError
	if errors.As(err, &re) {
		return msgInvalidURL
	}
	var te *TranscriptError
	if errors.As(err, &te) {
		return msgTranscriptFail
	}
	var se *SynthesisError
	if errors.As(err, &se) {
		return msgSynthesisFail
	}
	return msgGenericFail
}
