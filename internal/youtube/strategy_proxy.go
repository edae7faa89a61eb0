package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coachtube/coachtube/internal/engine"
)

// proxyStrategy posts the video URL to a third-party transcription service.
// The slowest and least predictable source, hence last in the cascade and the
// only strategy registered with a retry policy. The service transcribes on
// demand, so the timeout is generous — on the order of two minutes.
type proxyStrategy struct{}

func (s *proxyStrategy) Name() string { return "proxy" }

type proxyRequest struct {
	VideoURL string `json:"videoUrl"`
	LangCode string `json:"langCode"`
}

type proxyResponse struct {
	Captions []struct {
		Text string `json:"text"`
	} `json:"captions"`
}

var (
	proxyClient     *http.Client
	proxyClientOnce sync.Once
)

// proxyHTTPClient is separate from the shared client: its timeout must cover
// a full on-demand transcription, not a page fetch.
func proxyHTTPClient() *http.Client {
	proxyClientOnce.Do(func() {
		timeout := engine.Cfg.TranscriptProxyTimeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		proxyClient = &http.Client{Timeout: timeout}
	})
	return proxyClient
}

func (s *proxyStrategy) Attempt(ctx context.Context, videoID string) (string, error) {
	engine.IncrTranscriptProxy()

	body, err := json.Marshal(proxyRequest{
		VideoURL: videoURLFor(videoID),
		LangCode: "en",
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, engine.Cfg.TranscriptProxyURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := proxyHTTPClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("transcript proxy: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		// 429/5xx come back as retryable errors so the registration's
		// retry policy actually covers proxy overload.
		return "", fmt.Errorf("transcript proxy: %w", engine.StatusError(resp.StatusCode))
	}

	var out proxyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode proxy response: %w", err)
	}
	if len(out.Captions) == 0 {
		return "", errors.New("proxy returned no captions")
	}

	var sb strings.Builder
	for _, c := range out.Captions {
		if c.Text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
