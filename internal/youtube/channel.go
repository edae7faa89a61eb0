package youtube

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coachtube/coachtube/internal/engine"
	yt "google.golang.org/api/youtube/v3"
)

// FetchChannelInfo retrieves channel snippet, statistics, branding and status
// in one batched call and runs link extraction over the free-text fields.
func (c *Client) FetchChannelInfo(ctx context.Context, channelID string) (*ChannelInfo, error) {
	engine.IncrChannelFetches()

	resp, err := withFallback(c, func(svc *yt.Service) (*yt.ChannelListResponse, error) {
		return svc.Channels.
			List([]string{"snippet", "statistics", "brandingSettings", "status", "contentDetails"}).
			Id(channelID).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
	}
	return channelInfoFromAPI(channelID, resp.Items[0]), nil
}

func channelInfoFromAPI(channelID string, ch *yt.Channel) *ChannelInfo {
	info := &ChannelInfo{ID: channelID}

	var keywords string
	var trailer string
	if b := ch.BrandingSettings; b != nil && b.Channel != nil {
		keywords = b.Channel.Keywords
		trailer = b.Channel.UnsubscribedTrailer
	}

	if s := ch.Snippet; s != nil {
		info.Title = s.Title
		info.Description = s.Description
		info.CustomURL = s.CustomUrl
		info.Country = s.Country
		info.Thumbnail = bestThumbnail(s.Thumbnails)
		if t, err := time.Parse(time.RFC3339, s.PublishedAt); err == nil {
			info.JoinedAt = t
		}
	}
	if st := ch.Statistics; st != nil {
		// Counts may be zero when the channel hides them.
		info.SubscriberCount = st.SubscriberCount
		info.VideoCount = st.VideoCount
		info.ViewCount = st.ViewCount
	}
	if st := ch.Status; st != nil {
		info.Monetized = st.IsLinked
		info.Verified = st.IsLinked
	}
	info.Keywords = splitKeywords(keywords)

	combined := engine.JoinNonEmpty(" ", info.Description, trailer, keywords)
	links := ExtractLinks(combined)
	info.Contact = links.Contact
	if len(links.SocialMedia) > 0 {
		info.SocialMedia = links.SocialMedia
	}
	info.IsBusiness = links.IsBusiness

	return info
}

func bestThumbnail(t *yt.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	if t.High != nil && t.High.Url != "" {
		return t.High.Url
	}
	if t.Default != nil {
		return t.Default.Url
	}
	return ""
}

// splitKeywords parses the branding keywords string, which space-separates
// single words and double-quotes multi-word phrases.
func splitKeywords(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var out []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			if inQuote {
				flush()
			}
			inQuote = !inQuote
		case r == ' ' && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}
