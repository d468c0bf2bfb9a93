package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontStyle selects one of the bundled Go faces.
type FontStyle int

const (
	StyleRegular FontStyle = iota
	StyleBold
	StyleItalic
	StyleMono
)

var (
	parseOnce sync.Once
	parseErr  error
	fonts     map[FontStyle]*opentype.Font
)

func parseFonts() {
	raw := map[FontStyle][]byte{
		StyleRegular: goregular.TTF,
		StyleBold:    gobold.TTF,
		StyleItalic:  goitalic.TTF,
		StyleMono:    gomono.TTF,
	}
	fonts = make(map[FontStyle]*opentype.Font, len(raw))
	for style, ttf := range raw {
		f, err := opentype.Parse(ttf)
		if err != nil {
			parseErr = fmt.Errorf("parse bundled font %d: %w", style, err)
			return
		}
		fonts[style] = f
	}
}

// Face builds a font face for the style at the given pixel size. The
// underlying fonts are parsed once and shared, but each face holds its own
// rasterization buffer, so callers create faces per render rather than
// sharing one across goroutines.
func Face(style FontStyle, size float64) (font.Face, error) {
	parseOnce.Do(parseFonts)
	if parseErr != nil {
		return nil, parseErr
	}
	src, ok := fonts[style]
	if !ok {
		src = fonts[StyleRegular]
	}
	return opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
