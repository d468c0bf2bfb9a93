package export

import (
	"bytes"
	"context"
	"image"
	"testing"

	"github.com/anatolykoptev/go_guide/internal/engine"
	"github.com/anatolykoptev/go_guide/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain words", "How to Solder", "HowtoSolder_Guide"},
		{"punctuation and digits", "How to Solder (2024)!", "HowtoSolder2024_Guide"},
		{"unicode stripped", "Café Brewing ☕ Crash-Course", "CafBrewingCrashCourse_Guide"},
		{"empty title", "", "_Guide"},
		{"only symbols", "???///", "_Guide"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.title))
		})
	}
}

func TestPDFBytes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 90))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	data, err := PDFBytes(img)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "missing PDF header")
	assert.Contains(t, string(data), "/MediaBox [0 0 120", "page not sized to image width")
}

func TestGuidePDF(t *testing.T) {
	g := engine.GuideData{
		Title:   "Sourdough: The Basics",
		Author:  "Bread Channel",
		VideoID: "abcdefghijk",
		Steps: []engine.GuideStep{
			{Title: "Mix the starter", Description: "Combine flour and water.", Timestamp: 30},
		},
	}

	art, err := GuidePDF(context.Background(), g, render.Options{Width: 320, Scale: 1})
	require.NoError(t, err)

	assert.Equal(t, "SourdoughTheBasics_Guide.pdf", art.Filename)
	assert.Equal(t, "application/pdf", art.MIME)
	assert.True(t, bytes.HasPrefix(art.Data, []byte("%PDF-")), "missing PDF header")
}
