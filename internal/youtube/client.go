package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// Client wraps the YouTube Data API v3 for channel resolution, metadata and
// upload listing. Transcript extraction does not go through here — caption
// endpoints are not part of the public Data API surface.
type Client struct {
	svc *yt.Service
	// fallback covers quota exhaustion on the primary key. nil when no
	// secondary key is configured.
	fallback *yt.Service
}

// NewClient builds a Data API client. fallbackKey may be empty. The service
// owns its transport; a custom HTTP client would bypass the key-injecting
// transport and break authentication.
func NewClient(ctx context.Context, apiKey, fallbackKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("youtube: api key required")
	}
	svc, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("youtube: create service: %w", err)
	}

	c := &Client{svc: svc}
	if fallbackKey != "" {
		fsvc, err := yt.NewService(ctx, option.WithAPIKey(fallbackKey))
		if err != nil {
			slog.Warn("youtube: fallback key unusable", slog.Any("error", err))
		} else {
			c.fallback = fsvc
		}
	}
	return c, nil
}

// withFallback runs fn against the primary service and retries once on the
// fallback key when the primary reports quota exhaustion.
func withFallback[T any](c *Client, fn func(svc *yt.Service) (T, error)) (T, error) {
	out, err := fn(c.svc)
	if err != nil && c.fallback != nil && isQuotaErr(err) {
		slog.Debug("youtube: primary key quota exhausted, using fallback")
		return fn(c.fallback)
	}
	return out, err
}

func isQuotaErr(err error) bool {
	var ge *googleapi.Error
	return errors.As(err, &ge) && ge.Code == http.StatusForbidden
}
