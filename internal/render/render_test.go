package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anatolykoptev/go_guide/internal/engine"
)

func testGuide(steps int) engine.GuideData {
	g := engine.GuideData{
		Title:   "Build a Birdhouse",
		Author:  "Workshop Channel",
		VideoID: "abcdefghijk",
	}
	descs := []string{
		"Cut the **side panels** to length and sand the edges.",
		"Drill the entrance hole.\n\n- use a 32mm bit\n- clamp the panel first",
		"Assemble with glue, then run `wood screws` along each seam.",
	}
	for i := 0; i < steps; i++ {
		g.Steps = append(g.Steps, engine.GuideStep{
			Title:       descs[i%len(descs)][:20],
			Description: descs[i%len(descs)],
			Timestamp:   i * 95,
		})
	}
	return g
}

func TestGuideDimensions(t *testing.T) {
	img, err := Guide(context.Background(), testGuide(2), Options{Width: 400, Scale: 2})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 800 {
		t.Errorf("width = %d, want 800", b.Dx())
	}
	if b.Dy() < 100 {
		t.Errorf("height = %d, suspiciously small", b.Dy())
	}
}

func TestGuideBackgroundIsWhite(t *testing.T) {
	img, err := Guide(context.Background(), testGuide(1), Options{Width: 300, Scale: 1})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff {
		t.Errorf("corner pixel = %v, want white", color.RGBA64{R: uint16(r), G: uint16(g), B: uint16(b)})
	}
}

func TestGuideDeterministic(t *testing.T) {
	g := testGuide(3)
	first, err := Guide(context.Background(), g, Options{Width: 320, Scale: 1})
	if err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	second, err := Guide(context.Background(), g, Options{Width: 320, Scale: 1})
	if err != nil {
		t.Fatalf("second render failed: %v", err)
	}
	a, ok := first.(*image.RGBA)
	if !ok {
		t.Fatalf("unexpected image type %T", first)
	}
	b := second.(*image.RGBA)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("two renders of the same guide differ")
	}
}

func TestGuideHeightGrowsWithSteps(t *testing.T) {
	short, err := Guide(context.Background(), testGuide(1), Options{Width: 400, Scale: 1})
	if err != nil {
		t.Fatalf("short render failed: %v", err)
	}
	long, err := Guide(context.Background(), testGuide(3), Options{Width: 400, Scale: 1})
	if err != nil {
		t.Fatalf("long render failed: %v", err)
	}
	if long.Bounds().Dy() <= short.Bounds().Dy() {
		t.Errorf("3-step height %d not above 1-step height %d", long.Bounds().Dy(), short.Bounds().Dy())
	}
}

func TestGuideWithThumbnail(t *testing.T) {
	thumb := image.NewRGBA(image.Rect(0, 0, 48, 36))
	for i := range thumb.Pix {
		thumb.Pix[i] = 0x7f
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	bare := testGuide(1)
	withImg := testGuide(1)
	withImg.Thumbnail = srv.URL

	plain, err := Guide(context.Background(), bare, Options{Width: 400, Scale: 1, FetchImages: true})
	if err != nil {
		t.Fatalf("plain render failed: %v", err)
	}
	illustrated, err := Guide(context.Background(), withImg, Options{Width: 400, Scale: 1, FetchImages: true})
	if err != nil {
		t.Fatalf("illustrated render failed: %v", err)
	}
	if illustrated.Bounds().Dy() <= plain.Bounds().Dy() {
		t.Errorf("thumbnail did not add height: %d vs %d", illustrated.Bounds().Dy(), plain.Bounds().Dy())
	}
}

func TestGuideThumbnailFetchFailureIsNonFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	g := testGuide(1)
	g.Thumbnail = srv.URL
	img, err := Guide(context.Background(), g, Options{Width: 400, Scale: 1, FetchImages: true})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if img.Bounds().Dx() != 400 {
		t.Errorf("width = %d, want 400", img.Bounds().Dx())
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		runs []Run
		want []token
	}{
		{
			name: "single run",
			runs: []Run{{Text: "two words", Style: StyleRegular}},
			want: []token{
				{text: "two", style: StyleRegular},
				{text: "words", style: StyleRegular, space: true},
			},
		},
		{
			name: "space carried across runs",
			runs: []Run{{Text: "use ", Style: StyleRegular}, {Text: "go", Style: StyleMono}},
			want: []token{
				{text: "use", style: StyleRegular},
				{text: "go", style: StyleMono, space: true},
			},
		},
		{
			name: "glued style change has no space",
			runs: []Run{{Text: "re", Style: StyleRegular}, {Text: "ally", Style: StyleBold}},
			want: []token{
				{text: "re", style: StyleRegular},
				{text: "ally", style: StyleBold},
			},
		},
		{
			name: "newline becomes hard break",
			runs: []Run{{Text: "npm install\nnpm start", Style: StyleMono}},
			want: []token{
				{text: "npm", style: StyleMono},
				{text: "install", style: StyleMono, space: true},
				{brk: true},
				{text: "npm", style: StyleMono},
				{text: "start", style: StyleMono, space: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.runs)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tokens %+v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		sec  int
		want string
	}{
		{0, "0:00"},
		{7, "0:07"},
		{65, "1:05"},
		{600, "10:00"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{-4, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.sec); got != tt.want {
			t.Errorf("FormatTimestamp(%d) = %q, want %q", tt.sec, got, tt.want)
		}
	}
}
