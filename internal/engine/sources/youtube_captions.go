package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_guide/internal/engine"
)

// Caption fetch tiers.
// Tier 1: watch page scrape → ytInitialPlayerResponse → caption track XML.
// Tier 2: /next → engagement panel → /get_transcript (default track only).
// Tier 3: ANDROID Innertube /player → captionTracks.

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// fetchWatchPage downloads the watch page HTML, through the hardened browser
// client when one is configured.
func fetchWatchPage(ctx context.Context, videoID string) ([]byte, error) {
	watchURL := engine.WatchURL(videoID)

	if bc := engine.Cfg.BrowserClient; bc != nil {
		data, _, status, err := bc.Do(http.MethodGet, watchURL, engine.ChromeHeaders(), nil)
		if err != nil {
			return nil, fmt.Errorf("watch page (browser): %w", err)
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("watch page (browser): HTTP %d", status)
		}
		return data, nil
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return engine.GetHTTPClient().Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
}

// fetchViaWatchPage scrapes ytInitialPlayerResponse from the watch page and
// fetches the selected caption track.
func fetchViaWatchPage(ctx context.Context, videoID, lang string) ([]engine.CaptionLine, error) {
	body, err := fetchWatchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}

	idx := bytes.Index(body, []byte(ytInitialPlayerResponseMarker))
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal(jsonData, &playerResp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	if playerResp.Captions == nil {
		return nil, errors.New("no captions in ytInitialPlayerResponse")
	}
	tracks := playerResp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, errors.New("no caption tracks in watch page")
	}
	track, err := pickTrack(tracks, lang)
	if err != nil {
		return nil, err
	}
	return fetchTimedText(ctx, track.BaseURL)
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by
// tracking brace depth. A backslash inside a string consumes exactly the next
// byte, so "c:\\" closes where a naive previous-byte check would keep scanning.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		switch {
		case escaped:
			escaped = false
		case inStr:
			switch c {
			case '\\':
				escaped = true
			case '"':
				inStr = false
			}
		default:
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
	}
	return nil
}

// getTranscriptRE extracts the continuation token from a raw /next JSON response.
var getTranscriptRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

func extractTranscriptToken(data []byte) (string, error) {
	if m := getTranscriptRE.FindSubmatch(data); len(m) >= 2 {
		// The params value in the /next JSON response is URL-encoded.
		// /get_transcript expects the decoded (raw base64) form.
		decoded, err := url.QueryUnescape(string(m[1]))
		if err != nil {
			return string(m[1]), nil
		}
		return decoded, nil
	}
	return "", errors.New("getTranscriptEndpoint not found in engagement panels")
}

// parseCaptionSegments converts a /get_transcript response into timestamped lines.
func parseCaptionSegments(resp ytGetTranscriptResp) []engine.CaptionLine {
	var lines []engine.CaptionLine
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		segs := action.UpdateEngagementPanelAction.Content.
			TranscriptRenderer.Content.
			TranscriptSearchPanelRenderer.Body.
			TranscriptSegmentListRenderer.InitialSegments
		for _, seg := range segs {
			r := seg.TranscriptSegmentRenderer
			if r == nil {
				continue
			}
			var sb strings.Builder
			for _, run := range r.Snippet.Runs {
				if run.Text != "" {
					if sb.Len() > 0 {
						sb.WriteByte(' ')
					}
					sb.WriteString(run.Text)
				}
			}
			text := engine.CleanCaption(sb.String())
			if text == "" {
				continue
			}
			startMs, _ := strconv.ParseFloat(r.StartMs, 64)
			lines = append(lines, engine.CaptionLine{Start: startMs / 1000, Text: text})
		}
	}
	return lines
}

// fetchViaEngagementPanel fetches the default-language track via:
//  1. POST /next → engagementPanels carrying a transcript continuation token
//  2. POST /get_transcript with the token → timestamped JSON segments
//
// Works from datacenter IPs where /player returns LOGIN_REQUIRED. The track
// language cannot be chosen on this path.
func fetchViaEngagementPanel(ctx context.Context, videoID string) ([]engine.CaptionLine, error) {
	visitorData := generateVisitorData()

	nextData, err := postInnerTubeWEB(ctx, ytNextURL, map[string]any{
		"videoId": videoID,
		"context": ytWebContext(visitorData),
	}, visitorData)
	if err != nil {
		return nil, fmt.Errorf("/next: %w", err)
	}

	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}

	transcriptData, err := postInnerTubeWEB(ctx, ytGetTranscriptURL, map[string]any{
		"params": token,
		"context": map[string]any{
			"client": ytWebClientCtx{
				ClientName:    "WEB",
				ClientVersion: ytWebVersion,
				VisitorData:   visitorData,
				Hl:            "en",
				Gl:            "US",
			},
		},
	}, visitorData)
	if err != nil {
		return nil, fmt.Errorf("/get_transcript: %w", err)
	}

	var transcriptResp ytGetTranscriptResp
	if err := json.Unmarshal(transcriptData, &transcriptResp); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}

	lines := parseCaptionSegments(transcriptResp)
	if len(lines) == 0 {
		return nil, errors.New("empty transcript segments")
	}
	return lines, nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// langMatches reports whether a track language code satisfies a requested
// language. Prefix matching lets "en" accept "en-US"; codes compare
// case-insensitively since callers normalise to lowercase.
func langMatches(code, lang string) bool {
	return strings.HasPrefix(strings.ToLower(code), strings.ToLower(lang))
}

// pickTrack selects a caption track. A non-empty lang is strict: only tracks
// whose language code starts with lang qualify, manual before auto-generated,
// and absence is an error. An empty lang picks the site default: manual
// English, auto English, any manual track, first usable track.
func pickTrack(tracks []captionTrack, lang string) (captionTrack, error) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, errors.New("all caption tracks require PoToken")
	}

	if lang != "" {
		for _, t := range usable {
			if langMatches(t.LanguageCode, lang) && t.Kind != "asr" {
				return t, nil
			}
		}
		for _, t := range usable {
			if langMatches(t.LanguageCode, lang) {
				return t, nil
			}
		}
		return captionTrack{}, fmt.Errorf("no %s caption track", lang)
	}

	for _, t := range usable {
		if langMatches(t.LanguageCode, "en") && t.Kind != "asr" {
			return t, nil
		}
	}
	for _, t := range usable {
		if langMatches(t.LanguageCode, "en") {
			return t, nil
		}
	}
	for _, t := range usable {
		if t.Kind != "asr" {
			return t, nil
		}
	}
	return usable[0], nil
}

// fetchTimedText fetches a timedtext XML caption URL and parses it into
// timestamped lines.
func fetchTimedText(ctx context.Context, baseURL string) ([]engine.CaptionLine, error) {
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return engine.GetHTTPClient().Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil, err
	}
	return parseTimedText(body)
}

// parseTimedText decodes timedtext XML into caption lines. Lines that are
// empty after markup cleanup are dropped.
func parseTimedText(body []byte) ([]engine.CaptionLine, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	lines := make([]engine.CaptionLine, 0, len(tt.Lines))
	for _, ln := range tt.Lines {
		text := engine.CleanCaption(ln.Text)
		if text == "" {
			continue
		}
		lines = append(lines, engine.CaptionLine{Start: ln.Start, Text: text})
	}
	return lines, nil
}

// fetchViaPlayer uses the ANDROID Innertube /player endpoint.
// Works from non-blocked (residential/cloud) IP addresses.
func fetchViaPlayer(ctx context.Context, videoID, lang string) ([]engine.CaptionLine, error) {
	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ytInnertubeURL+"?prettyPrint=false", bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", ytAndroidUA)
		req.Header.Set("X-Youtube-Client-Name", "3")
		req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)
		return engine.GetHTTPClient().Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}
	defer resp.Body.Close()

	var playerResp innertubePlayerResp
	if err := json.NewDecoder(resp.Body).Decode(&playerResp); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	if playerResp.Captions == nil {
		reason := ""
		if playerResp.PlayabilityStatus != nil {
			reason = playerResp.PlayabilityStatus.Reason
		}
		if reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", reason)
		}
		return nil, errors.New("no captions in player response")
	}
	tracks := playerResp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, errors.New("no caption tracks")
	}
	track, err := pickTrack(tracks, lang)
	if err != nil {
		return nil, err
	}
	return fetchTimedText(ctx, track.BaseURL)
}
