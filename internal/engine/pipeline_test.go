package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func withOEmbed(t *testing.T, url string) {
	t.Helper()
	old := Cfg.OEmbedURL
	Cfg.OEmbedURL = url
	t.Cleanup(func() { Cfg.OEmbedURL = old })
}

func TestGenerateGuideEndToEnd(t *testing.T) {
	// Metadata endpoint down: the run must still finish with default labels.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	withOEmbed(t, srv.URL)

	withCaptions(t, &fakeCaptions{})
	withModel(t, &fakeModel{resp: `{"steps":[{"title":"Intro","description":"Watch the opening.","timestamp":0}]}`})

	var progress []Progress
	guide, err := GenerateGuide(context.Background(), GuideRequest{
		URL:              "https://youtu.be/abcdefghijk",
		ManualTranscript: "[0s] Intro\n[30s] Step one",
	}, func(p Progress) { progress = append(progress, p) })
	if err != nil {
		t.Fatalf("GenerateGuide: %v", err)
	}

	if guide.VideoID != "abcdefghijk" {
		t.Errorf("VideoID = %q", guide.VideoID)
	}
	if guide.Author != "Unknown Creator" || guide.Title != "YouTube Video" {
		t.Errorf("metadata defaults not applied: %q / %q", guide.Title, guide.Author)
	}
	if len(guide.Steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(guide.Steps))
	}
	if !strings.Contains(guide.Steps[0].VideoURL, "abcdefghijk&t=0s") {
		t.Errorf("step VideoURL = %q, want deep link at 0s", guide.Steps[0].VideoURL)
	}
	if guide.Steps[0].ImageURL != "https://img.youtube.com/vi/abcdefghijk/hqdefault.jpg" {
		t.Errorf("step ImageURL = %q", guide.Steps[0].ImageURL)
	}

	if len(progress) == 0 {
		t.Fatal("no progress reported")
	}
	if first := progress[0]; first.Stage != StageResolving {
		t.Errorf("first stage = %v", first.Stage)
	}
	if last := progress[len(progress)-1]; last.Stage != StageReady || last.Percent != 100 {
		t.Errorf("last progress = %+v, want ready at 100", last)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i].Percent < progress[i-1].Percent {
			t.Errorf("progress went backwards: %d%% after %d%%", progress[i].Percent, progress[i-1].Percent)
		}
	}
}

func TestGenerateGuideInvalidURLPreNetwork(t *testing.T) {
	var metaCalls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metaCalls.Add(1)
	}))
	defer srv.Close()
	withOEmbed(t, srv.URL)

	captions := &fakeCaptions{}
	model := &fakeModel{resp: `{"steps":[]}`}
	withCaptions(t, captions)
	withModel(t, model)

	var progress []Progress
	_, err := GenerateGuide(context.Background(), GuideRequest{URL: "not a url"},
		func(p Progress) { progress = append(progress, p) })
	if err == nil {
		t.Fatal("want error for unresolvable input")
	}
	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("error type = %T", err)
	}

	if n := metaCalls.Load(); n != 0 {
		t.Errorf("metadata endpoint hit %d times before resolution", n)
	}
	if len(captions.calls) != 0 {
		t.Errorf("caption provider hit %d times before resolution", len(captions.calls))
	}
	if model.calls != 0 {
		t.Errorf("model hit %d times before resolution", model.calls)
	}

	last := progress[len(progress)-1]
	if last.Stage != StageFailed || last.Message != "Invalid URL" {
		t.Errorf("last progress = %+v", last)
	}
}

func TestGenerateGuideTranscriptFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	withOEmbed(t, srv.URL)

	model := &fakeModel{resp: `{"steps":[]}`}
	withCaptions(t, &fakeCaptions{}) // no tracks in any language
	withModel(t, model)

	var progress []Progress
	_, err := GenerateGuide(context.Background(),
		GuideRequest{URL: "https://www.youtube.com/watch?v=pipeTrans01"},
		func(p Progress) { progress = append(progress, p) })
	if err == nil {
		t.Fatal("want error when transcript is unavailable")
	}
	var te *TranscriptError
	if !errors.As(err, &te) {
		t.Fatalf("error type = %T", err)
	}
	if model.calls != 0 {
		t.Error("model called despite missing transcript")
	}

	last := progress[len(progress)-1]
	if last.Stage != StageFailed || !strings.Contains(last.Message, "manually") {
		t.Errorf("last progress = %+v, want manual-mode instruction", last)
	}
}

func TestGenerateGuideSynthesisFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	withOEmbed(t, srv.URL)

	withCaptions(t, &fakeCaptions{})
	withModel(t, &fakeModel{resp: "I cannot answer in JSON, sorry."})

	var progress []Progress
	_, err := GenerateGuide(context.Background(), GuideRequest{
		URL:              "https://youtu.be/pipeSynth01",
		ManualTranscript: "[0s] hello",
	}, func(p Progress) { progress = append(progress, p) })
	if err == nil {
		t.Fatal("want error for unparseable model output")
	}
	var se *SynthesisError
	if !errors.As(err, &se) {
		t.Fatalf("error type = %T", err)
	}

	last := progress[len(progress)-1]
	if last.Stage != StageFailed || last.Message != "Failed to parse AI response" {
		t.Errorf("last progress = %+v", last)
	}
}

func TestFetchTranscriptResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"Bike Repair Basics","author_name":"Cycle Shop"}`))
	}))
	defer srv.Close()
	withOEmbed(t, srv.URL)
	withCaptions(t, &fakeCaptions{})

	res, err := FetchTranscriptResult(context.Background(), GuideRequest{
		URL:              "https://youtu.be/pipeTscr001",
		ManualTranscript: "[0s] Check the chain",
	})
	if err != nil {
		t.Fatalf("FetchTranscriptResult: %v", err)
	}
	if res.VideoID != "pipeTscr001" {
		t.Errorf("VideoID = %q", res.VideoID)
	}
	if res.Title != "Bike Repair Basics" || res.Author != "Cycle Shop" {
		t.Errorf("metadata = %q / %q", res.Title, res.Author)
	}
	if res.Thumbnail != "https://img.youtube.com/vi/pipeTscr001/hqdefault.jpg" {
		t.Errorf("Thumbnail = %q, want derived default", res.Thumbnail)
	}
	if res.Transcript != "[0s] Check the chain" {
		t.Errorf("Transcript = %q", res.Transcript)
	}
}
