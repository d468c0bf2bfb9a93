package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_guide/internal/engine"
	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// Guide rasterization. The document is laid out twice with identical
// arithmetic: a measure pass computes the exact canvas height, then a draw
// pass paints onto a canvas of that height. All coordinates are physical
// pixels (logical units multiplied by the oversampling scale), so faces are
// rasterized at their final size instead of being upscaled.

const (
	defaultWidth = 800
	defaultScale = 2

	padX      = 48.0
	padTop    = 44.0
	padBottom = 48.0

	titleSize = 26.0
	metaSize  = 14.0
	stepSize  = 17.0
	tsSize    = 13.0
	bodySize  = 14.0
	numSize   = 14.0

	lineSpread = 1.5
	thumbMaxH  = 300.0
	badgeR     = 13.0
	bulletPad  = 16.0
)

type rgb [3]float64

var (
	colTitle  = rgb{0.09, 0.10, 0.12}
	colBody   = rgb{0.20, 0.22, 0.25}
	colMuted  = rgb{0.45, 0.47, 0.50}
	colAccent = rgb{0.04, 0.36, 0.65}
	colCode   = rgb{0.54, 0.17, 0.29}
	colRule   = rgb{0.86, 0.87, 0.89}
	colBadge  = rgb{0.12, 0.14, 0.18}
)

// Options controls rasterization.
type Options struct {
	Width       int  // logical width in pixels, default 800
	Scale       int  // oversampling factor for the whole canvas, default 2
	FetchImages bool // fetch the video thumbnail over HTTP
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Scale <= 0 {
		o.Scale = defaultScale
	}
	return o
}

// Guide rasterizes a guide document into a single image sized to its
// content. The thumbnail is fetched at most once per call and a fetch
// failure never fails the render.
func Guide(ctx context.Context, g engine.GuideData, opts Options) (image.Image, error) {
	opts = opts.withDefaults()

	var thumb image.Image
	if opts.FetchImages && g.Thumbnail != "" {
		img, err := fetchThumbnail(ctx, g.Thumbnail)
		if err != nil {
			slog.Warn("thumbnail fetch failed, rendering without image",
				slog.String("url", g.Thumbnail),
				slog.Any("error", err))
		} else {
			maxW := opts.Width - 2*int(padX)
			thumb = scaleToFit(img, maxW*opts.Scale, int(thumbMaxH)*opts.Scale)
		}
	}

	r, err := newRenderer(g, thumb, opts)
	if err != nil {
		return nil, err
	}

	height := int(math.Ceil(r.layout(nil)))
	if height < 1 {
		height = 1
	}
	dc := gg.NewContext(int(r.width), height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	r.layout(dc)
	return dc.Image(), nil
}

func fetchThumbnail(ctx context.Context, url string) (image.Image, error) {
	data, err := engine.RetryGet(ctx, engine.DefaultRetryConfig, engine.GetHTTPClient(), url, map[string]string{
		"User-Agent": engine.UserAgentChrome,
		"Accept":     "image/jpeg,image/png,image/*",
	})
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode thumbnail: %w", err)
	}
	return img, nil
}

// scaleToFit resizes src to fit within maxW x maxH preserving aspect ratio.
func scaleToFit(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 || maxW < 1 || maxH < 1 {
		return nil
	}
	f := math.Min(float64(maxW)/float64(b.Dx()), float64(maxH)/float64(b.Dy()))
	w := int(float64(b.Dx()) * f)
	h := int(float64(b.Dy()) * f)
	if w < 1 || h < 1 {
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

type renderer struct {
	g     engine.GuideData
	s     float64
	width float64
	thumb image.Image

	titleFaces map[FontStyle]font.Face
	metaFaces  map[FontStyle]font.Face
	stepFaces  map[FontStyle]font.Face
	tsFaces    map[FontStyle]font.Face
	bodyFaces  map[FontStyle]font.Face
	numFace    font.Face
}

func newRenderer(g engine.GuideData, thumb image.Image, opts Options) (*renderer, error) {
	s := float64(opts.Scale)
	r := &renderer{g: g, s: s, width: float64(opts.Width) * s, thumb: thumb}

	var err error
	if r.titleFaces, err = faceSet(titleSize*s, StyleBold); err != nil {
		return nil, err
	}
	if r.metaFaces, err = faceSet(metaSize*s); err != nil {
		return nil, err
	}
	if r.stepFaces, err = faceSet(stepSize*s, StyleBold); err != nil {
		return nil, err
	}
	if r.tsFaces, err = faceSet(tsSize*s, StyleBold); err != nil {
		return nil, err
	}
	if r.bodyFaces, err = faceSet(bodySize*s, StyleBold, StyleItalic, StyleMono); err != nil {
		return nil, err
	}
	if r.numFace, err = Face(StyleBold, numSize*s); err != nil {
		return nil, err
	}
	return r, nil
}

func faceSet(size float64, styles ...FontStyle) (map[FontStyle]font.Face, error) {
	m := make(map[FontStyle]font.Face, len(styles)+1)
	for _, st := range append([]FontStyle{StyleRegular}, styles...) {
		f, err := Face(st, size)
		if err != nil {
			return nil, err
		}
		m[st] = f
	}
	return m, nil
}

func faceFor(faces map[FontStyle]font.Face, st FontStyle) font.Face {
	if f, ok := faces[st]; ok {
		return f
	}
	return faces[StyleRegular]
}

func measure(f font.Face, s string) float64 {
	return float64(font.MeasureString(f, s)) / 64
}

func ascentOf(f font.Face) float64 {
	return float64(f.Metrics().Ascent) / 64
}

// layout walks the document once. With a nil context it only accumulates
// height; with a context it also draws. Both passes share every branch so
// wrapping decisions cannot diverge.
func (r *renderer) layout(dc *gg.Context) float64 {
	s := r.s
	left := padX * s
	contentW := r.width - 2*padX*s

	y := padTop * s

	y = r.drawToks(dc, tokenize([]Run{{Text: r.g.Title, Style: StyleBold}}), left, y, contentW, r.titleFaces, titleSize*s, colTitle)
	y += 6 * s
	y = r.drawToks(dc, tokenize([]Run{{Text: "by " + r.g.Author, Style: StyleRegular}}), left, y, contentW, r.metaFaces, metaSize*s, colMuted)
	y += 18 * s

	if r.thumb != nil {
		b := r.thumb.Bounds()
		x := left + (contentW-float64(b.Dx()))/2
		if x < left {
			x = left
		}
		if dc != nil {
			dc.DrawImage(r.thumb, int(x), int(y))
		}
		y += float64(b.Dy()) + 22*s
	}

	for i, step := range r.g.Steps {
		if i > 0 {
			y += 12 * s
			if dc != nil {
				dc.SetRGB(colRule[0], colRule[1], colRule[2])
				dc.SetLineWidth(s)
				dc.DrawLine(left, y, left+contentW, y)
				dc.Stroke()
			}
			y += 18 * s
		}

		br := badgeR * s
		tx := left + 2*br + 12*s
		tw := contentW - 2*br - 12*s
		if dc != nil {
			cy := y + stepSize*s*lineSpread/2
			dc.SetRGB(colBadge[0], colBadge[1], colBadge[2])
			dc.DrawCircle(left+br, cy, br)
			dc.Fill()
			num := strconv.Itoa(i + 1)
			dc.SetFontFace(r.numFace)
			dc.SetRGB(1, 1, 1)
			dc.DrawString(num, left+br-measure(r.numFace, num)/2, cy+numSize*s*0.36)
		}
		y = r.drawToks(dc, tokenize([]Run{{Text: step.Title, Style: StyleBold}}), tx, y, tw, r.stepFaces, stepSize*s, colTitle)
		y += 4 * s

		tsH := tsSize * s
		if dc != nil {
			tsAsc := ascentOf(faceFor(r.tsFaces, StyleBold))
			drawPlay(dc, tx, y+tsAsc-tsH*0.82, tsH*0.82, colAccent)
			dc.SetFontFace(faceFor(r.tsFaces, StyleBold))
			dc.SetRGB(colAccent[0], colAccent[1], colAccent[2])
			dc.DrawString(FormatTimestamp(step.Timestamp), tx+tsH*1.1, y+tsAsc)
		}
		y += tsH*lineSpread + 4*s

		for _, blk := range ParseMarkdown(step.Description) {
			bx := tx
			bw := tw
			if blk.Bullet {
				if dc != nil {
					asc := ascentOf(faceFor(r.bodyFaces, StyleRegular))
					dc.SetRGB(colBody[0], colBody[1], colBody[2])
					dc.DrawCircle(bx+3*s, y+asc-bodySize*s*0.3, 2.2*s)
					dc.Fill()
				}
				bx += bulletPad * s
				bw -= bulletPad * s
			}
			y = r.drawToks(dc, tokenize(blk.Runs), bx, y, bw, r.bodyFaces, bodySize*s, colBody)
			y += 6 * s
		}
	}

	y += 16 * s
	y = r.drawToks(dc, tokenize([]Run{{Text: "Source: " + engine.WatchURL(r.g.VideoID), Style: StyleRegular}}), left, y, contentW, r.metaFaces, metaSize*s, colMuted)

	return y + padBottom*s
}

// drawToks wraps tokens into maxW, drawing them when dc is non-nil, and
// returns the y just below the last line.
func (r *renderer) drawToks(dc *gg.Context, toks []token, x0, y0, maxW float64, faces map[FontStyle]font.Face, size float64, col rgb) float64 {
	lineH := size * lineSpread
	asc := ascentOf(faceFor(faces, StyleRegular))

	x := x0
	y := y0
	for _, t := range toks {
		if t.brk {
			x = x0
			y += lineH
			continue
		}
		f := faceFor(faces, t.style)
		w := measure(f, t.text)
		sp := 0.0
		if t.space && x > x0 {
			sp = measure(f, " ")
		}
		if x+sp+w > x0+maxW && x > x0 {
			x = x0
			y += lineH
			sp = 0
		}
		if dc != nil {
			c := col
			if t.style == StyleMono {
				c = colCode
			}
			dc.SetFontFace(f)
			dc.SetRGB(c[0], c[1], c[2])
			dc.DrawString(t.text, x+sp, y+asc)
		}
		x += sp + w
	}
	if x == x0 {
		return y
	}
	return y + lineH
}

type token struct {
	text  string
	style FontStyle
	space bool // a space precedes this token when mid-line
	brk   bool // hard line break
}

// tokenize splits styled runs into wrappable word tokens. Newlines become
// hard breaks, other whitespace collapses into single inter-word spaces.
func tokenize(runs []Run) []token {
	var toks []token
	pending := false
	for _, run := range runs {
		for li, line := range strings.Split(run.Text, "\n") {
			if li > 0 {
				toks = append(toks, token{brk: true})
				pending = false
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				if line != "" {
					pending = true
				}
				continue
			}
			lead := line[0] == ' ' || line[0] == '\t'
			for fi, f := range fields {
				toks = append(toks, token{
					text:  f,
					style: run.Style,
					space: pending || fi > 0 || lead,
				})
				pending = false
			}
			if tail := line[len(line)-1]; tail == ' ' || tail == '\t' {
				pending = true
			}
		}
	}
	return toks
}

func drawPlay(dc *gg.Context, x, y, h float64, col rgb) {
	dc.SetRGB(col[0], col[1], col[2])
	dc.MoveTo(x, y)
	dc.LineTo(x, y+h)
	dc.LineTo(x+h*0.9, y+h*0.5)
	dc.ClosePath()
	dc.Fill()
}

// FormatTimestamp renders seconds as m:ss, or h:mm:ss from one hour up.
func FormatTimestamp(sec int) string {
	if sec < 0 {
		sec = 0
	}
	h := sec / 3600
	m := sec / 60 % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec%60)
	}
	return fmt.Sprintf("%d:%02d", m, sec%60)
}
