package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coachtube/coachtube/internal/engine"
	yt "google.golang.org/api/youtube/v3"
)

// pageSize is the Data API maximum for playlistItems.list.
const pageSize = 50

// ListVideos paginates the channel's uploads playlist until it is exhausted
// or maxVideos records have been produced, whichever comes first. Records
// come back in upload-recency order (newest first) with transcripts not yet
// attempted. Durations are normalized to seconds here.
func (c *Client) ListVideos(ctx context.Context, channelID string, maxVideos int) ([]VideoRecord, error) {
	if maxVideos <= 0 {
		maxVideos = engine.Cfg.MaxVideos
	}

	playlistID, err := c.uploadsPlaylistID(ctx, channelID)
	if err != nil {
		return nil, err
	}

	videos := make([]VideoRecord, 0, maxVideos)
	pageToken := ""
	for len(videos) < maxVideos {
		want := maxVideos - len(videos)
		if want > pageSize {
			want = pageSize
		}

		resp, err := withFallback(c, func(svc *yt.Service) (*yt.PlaylistItemListResponse, error) {
			call := svc.PlaylistItems.
				List([]string{"contentDetails"}).
				PlaylistId(playlistID).
				MaxResults(int64(want)).
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			return call.Do()
		})
		if err != nil {
			return nil, fmt.Errorf("list uploads page: %w", err)
		}
		engine.IncrPagesListed()

		ids := make([]string, 0, len(resp.Items))
		for _, item := range resp.Items {
			if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
				ids = append(ids, item.ContentDetails.VideoId)
			}
		}
		if len(ids) == 0 {
			break
		}

		page, err := c.videoDetails(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, v := range page {
			if len(videos) >= maxVideos {
				break
			}
			videos = append(videos, v)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	slog.Debug("youtube: listed uploads",
		slog.String("channel", channelID), slog.Int("count", len(videos)))
	return videos, nil
}

func (c *Client) uploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	resp, err := withFallback(c, func(svc *yt.Service) (*yt.ChannelListResponse, error) {
		return svc.Channels.
			List([]string{"contentDetails"}).
			Id(channelID).
			Context(ctx).
			Do()
	})
	if err != nil {
		return "", fmt.Errorf("uploads playlist for %s: %w", channelID, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].ContentDetails == nil ||
		resp.Items[0].ContentDetails.RelatedPlaylists == nil ||
		resp.Items[0].ContentDetails.RelatedPlaylists.Uploads == "" {
		return "", fmt.Errorf("%w: %s", ErrNoUploads, channelID)
	}
	return resp.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

// videoDetails resolves one page of video ids to full records in a single
// batched lookup, preserving the ids' order.
func (c *Client) videoDetails(ctx context.Context, ids []string) ([]VideoRecord, error) {
	resp, err := withFallback(c, func(svc *yt.Service) (*yt.VideoListResponse, error) {
		return svc.Videos.
			List([]string{"snippet", "statistics", "contentDetails"}).
			Id(ids...).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, fmt.Errorf("video details: %w", err)
	}

	byID := make(map[string]*yt.Video, len(resp.Items))
	for _, v := range resp.Items {
		byID[v.Id] = v
	}

	out := make([]VideoRecord, 0, len(ids))
	for _, id := range ids {
		v, ok := byID[id]
		if !ok {
			continue // deleted or private since the playlist page was fetched
		}
		out = append(out, videoRecordFromAPI(v))
	}
	return out, nil
}

func videoRecordFromAPI(v *yt.Video) VideoRecord {
	rec := VideoRecord{
		ID:              v.Id,
		URL:             WatchURL(v.Id),
		TranscriptState: TranscriptNotAttempted,
	}
	if s := v.Snippet; s != nil {
		rec.Title = s.Title
		rec.Description = s.Description
		rec.Thumbnail = bestThumbnail(s.Thumbnails)
		if t, err := time.Parse(time.RFC3339, s.PublishedAt); err == nil {
			rec.PublishedAt = t
		}
	}
	if st := v.Statistics; st != nil {
		rec.ViewCount = st.ViewCount
	}
	if cd := v.ContentDetails; cd != nil {
		if secs, ok := ParseDuration(cd.Duration); ok {
			rec.DurationSeconds = &secs
		}
	}
	return rec
}
