package export

import (
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_guide/internal/engine"
	"github.com/anatolykoptev/go_guide/internal/render"
)

// GuideMarkdown builds a markdown rendition of the guide. Step descriptions
// are already markdown and pass through untouched.
func GuideMarkdown(g engine.GuideData) *Artifact {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", g.Title)
	fmt.Fprintf(&b, "A step-by-step guide from [this video](%s) by %s.\n\n", engine.WatchURL(g.VideoID), g.Author)
	if g.Thumbnail != "" {
		fmt.Fprintf(&b, "![%s](%s)\n\n", g.Title, g.Thumbnail)
	}

	for i, s := range g.Steps {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, s.Title)
		fmt.Fprintf(&b, "[Watch from %s](%s)\n\n", render.FormatTimestamp(s.Timestamp), s.VideoURL)
		if desc := strings.TrimSpace(s.Description); desc != "" {
			b.WriteString(desc)
			b.WriteString("\n\n")
		}
	}

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "Source: %s\n", engine.WatchURL(g.VideoID))

	engine.IncrExportMarkdown()
	return &Artifact{
		Filename: Filename(g.Title) + ".md",
		MIME:     "text/markdown; charset=utf-8",
		Data:     []byte(b.String()),
	}
}
