package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/coachtube/coachtube/internal/engine"
	"golang.org/x/net/html"
)

// captionsStrategy is the primary transcript source: scrape the watch page,
// pull caption track URLs out of the embedded ytInitialPlayerResponse, and
// fetch the matching timedtext payload. Works from any IP; breaks whenever
// YouTube reshuffles the page.
type captionsStrategy struct{}

// langPrefs is the caption language preference order. After these, any
// usable track is accepted ("auto").
var langPrefs = []string{"en", "en-US", "en-GB"}

func (s *captionsStrategy) Name() string { return "captions" }

func (s *captionsStrategy) Attempt(ctx context.Context, videoID string) (string, error) {
	engine.IncrTranscriptCaptions()

	body, err := fetchWatchPage(ctx, WatchURL(videoID))
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}

	raw, err := playerResponseJSON(body)
	if err != nil {
		return "", err
	}

	var player innertubePlayerResp
	if err := json.Unmarshal(raw, &player); err != nil {
		return "", fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	track, err := selectCaptionTrack(&player, langPrefs)
	if err != nil {
		return "", err
	}
	return fetchTimedText(ctx, track.BaseURL)
}

// fetchWatchPage retrieves watch-page HTML, preferring the fingerprinted
// browser client when one is configured.
func fetchWatchPage(ctx context.Context, pageURL string) ([]byte, error) {
	if bc := engine.Cfg.BrowserClient; bc != nil {
		body, _, status, err := bc.Do(http.MethodGet, pageURL, engine.ChromeHeaders(), nil)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("HTTP %d", status)
		}
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", engine.RandomUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := engine.Cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
}

// playerResponseJSON walks the page's script elements and extracts the
// balanced JSON object assigned to ytInitialPlayerResponse.
func playerResponseJSON(page []byte) ([]byte, error) {
	tok := html.NewTokenizer(bytes.NewReader(page))
	inScript := false
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return nil, errors.New("ytInitialPlayerResponse not found in watch page")
		case html.StartTagToken:
			name, _ := tok.TagName()
			inScript = string(name) == "script"
		case html.EndTagToken:
			inScript = false
		case html.TextToken:
			if !inScript {
				continue
			}
			text := tok.Raw()
			idx := bytes.Index(text, []byte(ytInitialPlayerResponseMarker))
			if idx < 0 {
				continue
			}
			raw := balancedJSON(text[idx+len(ytInitialPlayerResponseMarker):])
			if raw == nil {
				return nil, errors.New("malformed ytInitialPlayerResponse JSON")
			}
			return raw, nil
		}
	}
}

// balancedJSON returns the leading brace-balanced JSON object in data,
// or nil when braces never balance.
func balancedJSON(data []byte) []byte {
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	depth := 0
	inString := false
	escaped := false
	for i, b := range data {
		if escaped {
			escaped = false
			continue
		}
		switch b {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return data[:i+1]
				}
			}
		}
	}
	return nil
}

// needsPoToken reports whether a caption track URL requires a PoToken.
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// selectCaptionTrack picks the best usable track: manual track in a preferred
// language, then auto-generated in a preferred language, then any usable track.
func selectCaptionTrack(player *innertubePlayerResp, langs []string) (captionTrack, error) {
	if player.Captions == nil {
		reason := ""
		if player.PlayabilityStatus != nil {
			reason = player.PlayabilityStatus.Reason
		}
		if reason != "" {
			return captionTrack{}, fmt.Errorf("captions unavailable: %s", reason)
		}
		return captionTrack{}, errors.New("no captions in player response")
	}
	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return captionTrack{}, errors.New("no caption tracks")
	}

	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, errors.New("all caption tracks require PoToken")
	}

	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, nil
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, nil
			}
		}
	}
	return usable[0], nil
}

// fetchTimedText fetches and parses a timedtext XML caption URL.
// Single attempt: per-strategy failures fall through to the next strategy
// instead of retrying here.
func fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", engine.UserAgentBot)

	resp, err := engine.Cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("timedtext HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return "", err
	}

	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}

	var sb strings.Builder
	for _, line := range tt.Lines {
		text := engine.CleanHTML(line.Text)
		if text != "" {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(text)
		}
	}
	return sb.String(), nil
}
