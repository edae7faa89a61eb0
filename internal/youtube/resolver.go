package youtube

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/coachtube/coachtube/internal/engine"
	yt "google.golang.org/api/youtube/v3"
)

// URL-shape patterns, tried in order. The first match determines which single
// lookup runs — this is a heuristic chain, not a fallback cascade. The vanity
// pattern must come last: it matches almost anything after the host.
var urlPatterns = []struct {
	kind IdentifierKind
	re   *regexp.Regexp
}{
	{KindCanonical, regexp.MustCompile(`youtube\.com/channel/([a-zA-Z0-9_-]+)`)},
	{KindHandle, regexp.MustCompile(`youtube\.com/@([a-zA-Z0-9._-]+)`)},
	{KindCustomURL, regexp.MustCompile(`youtube\.com/c/([a-zA-Z0-9_-]+)`)},
	{KindUsername, regexp.MustCompile(`youtube\.com/user/([a-zA-Z0-9_-]+)`)},
	{KindCustomURL, regexp.MustCompile(`youtube\.com/([a-zA-Z0-9_-]+)`)},
}

// ParseChannelURL classifies a channel URL by shape. Bare "@handle" input
// (no host) is accepted as a handle. Pure function, no network.
func ParseChannelURL(rawURL string) (ChannelIdentifier, error) {
	trimmed := strings.TrimSpace(rawURL)
	if strings.HasPrefix(trimmed, "@") {
		return ChannelIdentifier{Kind: KindHandle, Value: strings.TrimPrefix(trimmed, "@")}, nil
	}
	for _, p := range urlPatterns {
		if m := p.re.FindStringSubmatch(trimmed); m != nil {
			return ChannelIdentifier{Kind: p.kind, Value: m[1]}, nil
		}
	}
	return ChannelIdentifier{}, fmt.Errorf("%w: unrecognized URL %q", ErrResolution, rawURL)
}

// Resolve turns a free-form channel URL or handle into the canonical channel
// id. A canonical /channel/{id} URL short-circuits with zero API calls.
func (c *Client) Resolve(ctx context.Context, rawURL string) (string, error) {
	engine.IncrChannelResolutions()

	ident, err := ParseChannelURL(rawURL)
	if err != nil {
		return "", err
	}

	if ident.Kind == KindCanonical {
		return ident.Value, nil
	}

	// Handle→id mappings are stable; cache them across runs.
	cacheKey := engine.CacheKey("resolve", string(ident.Kind), ident.Value)
	if id, ok := engine.CacheLoadJSON[string](ctx, cacheKey); ok {
		return id, nil
	}

	var id string
	switch ident.Kind {
	case KindHandle, KindCustomURL:
		// Handles and custom URLs share the forHandle lookup; YouTube folded
		// legacy custom URLs into the handle namespace.
		id, err = c.lookupChannelID(ctx, ident.Value, func(call *yt.ChannelsListCall, v string) *yt.ChannelsListCall {
			return call.ForHandle(v)
		})
	case KindUsername:
		id, err = c.lookupChannelID(ctx, ident.Value, func(call *yt.ChannelsListCall, v string) *yt.ChannelsListCall {
			return call.ForUsername(v)
		})
	default:
		return "", fmt.Errorf("%w: %q", ErrResolution, rawURL)
	}
	if err != nil {
		return "", err
	}
	engine.CacheStoreJSON(ctx, cacheKey, id)
	return id, nil
}

func (c *Client) lookupChannelID(ctx context.Context, value string, bind func(*yt.ChannelsListCall, string) *yt.ChannelsListCall) (string, error) {
	resp, err := withFallback(c, func(svc *yt.Service) (*yt.ChannelListResponse, error) {
		return bind(svc.Channels.List([]string{"id"}), value).Context(ctx).Do()
	})
	if err != nil {
		return "", fmt.Errorf("%w: lookup %q: %v", ErrResolution, value, err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("%w: no channel for %q", ErrResolution, value)
	}
	return resp.Items[0].Id, nil
}
