package engine

import (
	"html"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
	xhtml "golang.org/x/net/html"
)

// User-Agent strings used across HTTP clients.
const (
	UserAgentBot    = "GoGuide/1.0"
	UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// CleanCaption normalizes one caption fragment: markup stripped, entities
// unescaped, whitespace collapsed. Timedtext lines arrive with <font>/<b>
// wrappers and double-encoded entities (&amp;#39;).
func CleanCaption(s string) string {
	if strings.ContainsAny(s, "<>") {
		s = stripTags(s)
	}
	s = html.UnescapeString(html.UnescapeString(s))
	return strings.Join(strings.Fields(s), " ")
}

// stripTags drops markup and keeps text nodes.
func stripTags(s string) string {
	tok := xhtml.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch tok.Next() {
		case xhtml.ErrorToken:
			return b.String()
		case xhtml.TextToken:
			b.Write(tok.Text())
		}
	}
}

// Truncate returns the first n bytes of s.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Never splits a multibyte rune.
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}
