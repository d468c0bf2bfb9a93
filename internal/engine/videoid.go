package engine

import (
	"net/url"
	"regexp"
	"strings"
)

// Video identifier resolution — URL string to canonical 11-char id.
// Purely syntactic, no network.

const videoIDLen = 11

// videoIDRE is the permissive fallback for inputs net/url cannot make sense of.
var videoIDRE = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|shorts/|embed/)|youtu\.be/)([a-zA-Z0-9_-]{11})(?:[^a-zA-Z0-9_-]|$)`)

// ResolveVideoID maps a YouTube URL in any supported form (youtu.be short
// link, watch?v= query, shorts/ path, embed/ path) to its video id.
// Returns *ResolutionError when no form matches or the token is malformed.
func ResolveVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &ResolutionError{Input: raw}
	}

	// Structured parse first. When the URL parses into a known host/form,
	// its token decides the outcome; the permissive fallback is only for
	// inputs the structured parse cannot place at all.
	if id, known := resolveStructured(raw); known {
		if id == "" {
			return "", &ResolutionError{Input: raw}
		}
		return id, nil
	}

	if m := videoIDRE.FindStringSubmatch(raw); len(m) >= 2 && len(m[1]) == videoIDLen {
		return m[1], nil
	}
	return "", &ResolutionError{Input: raw}
}

// resolveStructured branches on host and path shape. known reports whether
// the input parsed into a recognized URL form; id is "" for a recognized
// form carrying a malformed token.
func resolveStructured(raw string) (id string, known bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case host == "youtu.be":
		return validID(firstPathSegment(u.Path)), true

	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		path := u.Path
		switch {
		case path == "/watch":
			return validID(u.Query().Get("v")), true
		case strings.HasPrefix(path, "/shorts/"):
			return validID(firstPathSegment(strings.TrimPrefix(path, "/shorts"))), true
		case strings.HasPrefix(path, "/embed/"):
			return validID(firstPathSegment(strings.TrimPrefix(path, "/embed"))), true
		}
	}
	return "", false
}

func firstPathSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}

// validID returns s when it matches the id grammar (11 chars of
// [A-Za-z0-9_-]), else "".
func validID(s string) string {
	if len(s) != videoIDLen {
		return ""
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return ""
		}
	}
	return s
}
