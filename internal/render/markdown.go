package render

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Step descriptions arrive as markdown-ish prose. ParseMarkdown flattens
// them into drawable blocks: paragraphs, list items, and code blocks, each
// a sequence of styled runs. Anything fancier (tables, images, html)
// degrades to its plain text.

// Run is a span of text drawn in a single style.
type Run struct {
	Text  string
	Style FontStyle
}

// Block is one paragraph-level group of runs. Bullet marks a list item.
type Block struct {
	Runs   []Run
	Bullet bool
}

var mdParser = goldmark.DefaultParser()

// ParseMarkdown flattens markdown source into blocks.
func ParseMarkdown(source string) []Block {
	src := []byte(source)
	doc := mdParser.Parse(text.NewReader(src))

	w := &mdWalker{src: src}
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		w.block(child, false)
	}
	return w.blocks
}

type mdWalker struct {
	src    []byte
	blocks []Block
}

func (w *mdWalker) emit(b Block) {
	if len(b.Runs) > 0 {
		w.blocks = append(w.blocks, b)
	}
}

func (w *mdWalker) block(n ast.Node, inList bool) {
	switch n.Kind() {
	case ast.KindParagraph, ast.KindTextBlock:
		b := Block{Bullet: inList}
		w.inline(n, StyleRegular, &b)
		w.emit(b)
	case ast.KindHeading:
		b := Block{Bullet: inList}
		w.inline(n, StyleBold, &b)
		w.emit(b)
	case ast.KindList:
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				w.block(c, true)
			}
		}
	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		var sb strings.Builder
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			sb.Write(seg.Value(w.src))
		}
		code := strings.TrimRight(sb.String(), "\n")
		if code != "" {
			w.emit(Block{Runs: []Run{{Text: code, Style: StyleMono}}, Bullet: inList})
		}
	case ast.KindBlockquote:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			w.block(c, inList)
		}
	default:
		b := Block{Bullet: inList}
		w.inline(n, StyleRegular, &b)
		w.emit(b)
	}
}

func (w *mdWalker) inline(n ast.Node, style FontStyle, b *Block) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.Kind() {
		case ast.KindText:
			t := c.(*ast.Text)
			b.Runs = append(b.Runs, Run{Text: string(t.Segment.Value(w.src)), Style: style})
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.Runs = append(b.Runs, Run{Text: " ", Style: style})
			}
		case ast.KindString:
			s := c.(*ast.String)
			b.Runs = append(b.Runs, Run{Text: string(s.Value), Style: style})
		case ast.KindEmphasis:
			em := c.(*ast.Emphasis)
			next := StyleItalic
			if em.Level >= 2 {
				next = StyleBold
			}
			w.inline(c, next, b)
		case ast.KindCodeSpan:
			w.inline(c, StyleMono, b)
		case ast.KindAutoLink:
			al := c.(*ast.AutoLink)
			b.Runs = append(b.Runs, Run{Text: string(al.URL(w.src)), Style: style})
		default:
			w.inline(c, style, b)
		}
	}
}
