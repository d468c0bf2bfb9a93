package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestFetchMetadataSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != "https://www.youtube.com/watch?v=metaSucc001" {
			t.Errorf("oembed url param = %q", got)
		}
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("oembed format param = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"How to Sharpen a Knife","author_name":"Workshop Channel","thumbnail_url":"https://i.ytimg.com/vi/metaSucc001/maxresdefault.jpg"}`))
	}))
	defer srv.Close()

	old := Cfg.OEmbedURL
	Cfg.OEmbedURL = srv.URL
	defer func() { Cfg.OEmbedURL = old }()

	meta := FetchMetadata(context.Background(), "metaSucc001")
	if meta.Title != "How to Sharpen a Knife" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Author != "Workshop Channel" {
		t.Errorf("Author = %q", meta.Author)
	}
	if meta.Thumbnail != "https://i.ytimg.com/vi/metaSucc001/maxresdefault.jpg" {
		t.Errorf("Thumbnail = %q", meta.Thumbnail)
	}
}

func TestFetchMetadataServerErrorUsesDefaults(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	old := Cfg.OEmbedURL
	Cfg.OEmbedURL = srv.URL
	defer func() { Cfg.OEmbedURL = old }()

	meta := FetchMetadata(context.Background(), "metaFail001")
	if meta.Title != "YouTube Video" {
		t.Errorf("Title = %q, want default", meta.Title)
	}
	if meta.Author != "Unknown Creator" {
		t.Errorf("Author = %q, want default", meta.Author)
	}
	if meta.Thumbnail != "https://img.youtube.com/vi/metaFail001/hqdefault.jpg" {
		t.Errorf("Thumbnail = %q, want derived default", meta.Thumbnail)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("oembed called %d times, want exactly 1", n)
	}
}

func TestFetchMetadataPartialFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"Real Title"}`))
	}))
	defer srv.Close()

	old := Cfg.OEmbedURL
	Cfg.OEmbedURL = srv.URL
	defer func() { Cfg.OEmbedURL = old }()

	meta := FetchMetadata(context.Background(), "metaPart001")
	if meta.Title != "Real Title" {
		t.Errorf("Title = %q, want real value kept", meta.Title)
	}
	if meta.Author != "Unknown Creator" {
		t.Errorf("Author = %q, want per-field default", meta.Author)
	}
	if meta.Thumbnail != "https://img.youtube.com/vi/metaPart001/hqdefault.jpg" {
		t.Errorf("Thumbnail = %q, want per-field default", meta.Thumbnail)
	}
}

func TestFetchMetadataUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	old := Cfg.OEmbedURL
	Cfg.OEmbedURL = srv.URL
	defer func() { Cfg.OEmbedURL = old }()

	meta := FetchMetadata(context.Background(), "metaDown001")
	if meta.Title != "YouTube Video" || meta.Author != "Unknown Creator" {
		t.Errorf("got %+v, want defaults", meta)
	}
}
