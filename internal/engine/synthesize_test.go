package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeModel returns a canned response or error and records calls.
type fakeModel struct {
	resp   string
	err    error
	calls  int
	prompt string
}

func (m *fakeModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.prompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.resp, nil
}

func withModel(t *testing.T, m GuideModel) {
	t.Helper()
	old := Cfg.Model
	Cfg.Model = m
	t.Cleanup(func() { Cfg.Model = old })
}

func TestSynthesizeValid(t *testing.T) {
	fake := &fakeModel{resp: `{"steps":[
		{"title":"Gather tools","description":"Lay out the screwdriver and clamps.","timestamp":15},
		{"title":"Mount the bracket","description":"Align the bracket and drive both screws.","timestamp":95}
	]}`}
	withModel(t, fake)

	meta := VideoMetadata{Title: "Shelf Install", Author: "DIY Channel"}
	steps, err := Synthesize(context.Background(), meta, "[15s] first grab your tools")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(steps))
	}
	if steps[0].Title != "Gather tools" || steps[0].Timestamp != 15 {
		t.Errorf("step 0 = %+v", steps[0])
	}
	if steps[1].Timestamp != 95 {
		t.Errorf("step 1 = %+v", steps[1])
	}
	if !strings.Contains(fake.prompt, "Shelf Install") || !strings.Contains(fake.prompt, "[15s] first grab your tools") {
		t.Error("prompt missing metadata or transcript")
	}
}

func TestBuildGuidePromptRequestsMarkdown(t *testing.T) {
	meta := VideoMetadata{Title: "Shelf Install", Author: "DIY Channel"}
	prompt := BuildGuidePrompt(meta, "[15s] first grab your tools")

	if !strings.Contains(prompt, "Shelf Install") || !strings.Contains(prompt, "DIY Channel") {
		t.Error("prompt missing video metadata")
	}
	if !strings.Contains(prompt, "[15s] first grab your tools") {
		t.Error("prompt missing transcript")
	}
	if !strings.Contains(prompt, "markdown prose") {
		t.Error("description rule must ask for markdown descriptions")
	}
	if strings.Contains(prompt, "NO markdown") || strings.Contains(prompt, "plain text") {
		t.Error("prompt must not forbid markdown in descriptions")
	}
}

func TestSynthesizeFencedOutput(t *testing.T) {
	fake := &fakeModel{resp: "```json\n{\"steps\":[{\"title\":\"Only step\",\"description\":\"Do it.\",\"timestamp\":0}]}\n```"}
	withModel(t, fake)

	steps, err := Synthesize(context.Background(), VideoMetadata{}, "transcript")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(steps) != 1 || steps[0].Title != "Only step" {
		t.Errorf("steps = %+v", steps)
	}
}

func TestSynthesizeMalformedOutput(t *testing.T) {
	fake := &fakeModel{resp: "Sure! Here are the steps: 1. First..."}
	withModel(t, fake)

	_, err := Synthesize(context.Background(), VideoMetadata{}, "transcript")
	if err == nil {
		t.Fatal("want error for unparseable output")
	}
	var se *SynthesisError
	if !errors.As(err, &se) {
		t.Fatalf("error type = %T, want *SynthesisError", err)
	}
	if got := UserMessage(err); got != "Failed to parse AI response" {
		t.Errorf("UserMessage = %q", got)
	}
	if fake.calls != 1 {
		t.Errorf("model called %d times, want exactly 1 (no retry)", fake.calls)
	}
}

func TestSynthesizeEmptyStepsIsValid(t *testing.T) {
	fake := &fakeModel{resp: `{"steps":[]}`}
	withModel(t, fake)

	steps, err := Synthesize(context.Background(), VideoMetadata{}, "no instructions here")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(steps) != 0 {
		t.Errorf("got %d steps, want 0", len(steps))
	}
}

func TestSynthesizeTransportError(t *testing.T) {
	fake := &fakeModel{err: errors.New("503 model overloaded")}
	withModel(t, fake)

	_, err := Synthesize(context.Background(), VideoMetadata{}, "transcript")
	if err == nil {
		t.Fatal("want error")
	}
	var se *SynthesisError
	if errors.As(err, &se) {
		t.Error("transport failure must not be a SynthesisError")
	}
	if got := UserMessage(err); got != "Guide generation failed. Please try again." {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"steps":[]}`, `{"steps":[]}`},
		{"json fence", "```json\n{\"steps\":[]}\n```", `{"steps":[]}`},
		{"bare fence", "```\n{\"steps\":[]}\n```", `{"steps":[]}`},
		{"surrounding space", "  {\"steps\":[]}  \n", `{"steps":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
