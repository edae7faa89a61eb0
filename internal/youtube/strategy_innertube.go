package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/coachtube/coachtube/internal/engine"
)

// innertubeStrategy is the alternative transcript source: a second,
// independent client. It asks the ANDROID Innertube /player endpoint for
// caption track metadata, downloads the raw payload and cleans it up itself.
// Works where the watch page serves a consent wall but the app API does not.
type innertubeStrategy struct{}

func (s *innertubeStrategy) Name() string { return "innertube" }

func (s *innertubeStrategy) Attempt(ctx context.Context, videoID string) (string, error) {
	engine.IncrTranscriptInnertube()

	player, err := fetchPlayerResponse(ctx, videoID)
	if err != nil {
		return "", err
	}

	track, err := englishPreferringTrack(player)
	if err != nil {
		return "", err
	}

	payload, err := fetchCaptionPayload(ctx, track.BaseURL)
	if err != nil {
		return "", err
	}
	return cleanCaptionPayload(payload), nil
}

func fetchPlayerResponse(ctx context.Context, videoID string) (*innertubePlayerResp, error) {
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

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ytPlayerURL+"?prettyPrint=false", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", ytAndroidUA)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)

	resp, err := engine.Cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("android innertube HTTP %d: %s", resp.StatusCode, snippet)
	}

	var player innertubePlayerResp
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return &player, nil
}

// englishPreferringTrack picks an English track when one exists, otherwise
// the first available track of any language.
func englishPreferringTrack(player *innertubePlayerResp) (captionTrack, error) {
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
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, nil
		}
	}
	return tracks[0], nil
}

func fetchCaptionPayload(ctx context.Context, baseURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", ytAndroidUA)

	resp, err := engine.Cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch caption payload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("caption payload HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 512*1024))
}

var captionTextRE = regexp.MustCompile(`<text[^>]*>([^<]*)</text>`)

// cleanCaptionPayload pulls the text nodes out of a raw caption payload,
// strips markup and unescapes the five standard entities.
func cleanCaptionPayload(payload []byte) string {
	matches := captionTextRE.FindAllStringSubmatch(string(payload), -1)
	var sb strings.Builder
	for _, m := range matches {
		text := engine.UnescapeBasicEntities(engine.CleanHTML(m[1]))
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String()
}
