// Package youtube implements the channel-ingestion pipeline: resolving a
// channel URL to its canonical id, fetching channel metadata, listing uploads,
// and extracting video transcripts through a cascade of fallback strategies.
package youtube

import "time"

// IdentifierKind tags how a ChannelIdentifier was derived from the input URL.
type IdentifierKind string

const (
	KindCanonical IdentifierKind = "canonical"
	KindHandle    IdentifierKind = "handle"
	KindCustomURL IdentifierKind = "customUrl"
	KindUsername  IdentifierKind = "username"
)

// ChannelIdentifier is the outcome of URL-shape matching. Canonical ids need
// no lookup; every other kind resolves through exactly one Data API call.
type ChannelIdentifier struct {
	Kind  IdentifierKind
	Value string
}

// ContactInfo holds contact details extracted from channel free text.
// Each list is deduplicated with first-occurrence order preserved.
type ContactInfo struct {
	Emails   []string `json:"emails,omitempty"`
	Phones   []string `json:"phones,omitempty"`
	Websites []string `json:"websites,omitempty"`
}

// ChannelInfo is a snapshot of channel state at fetch time. It is built fresh
// on every ingestion run and replaced wholesale, never mutated.
type ChannelInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	CustomURL   string `json:"customUrl,omitempty"`

	SubscriberCount uint64 `json:"subscriberCount"`
	VideoCount      uint64 `json:"videoCount"`
	ViewCount       uint64 `json:"viewCount"`

	JoinedAt time.Time `json:"joinedAt"`
	Country  string    `json:"country,omitempty"`

	Monetized bool `json:"isMonetized"`
	Verified  bool `json:"verified"`

	Keywords    []string            `json:"keywords,omitempty"`
	Contact     ContactInfo         `json:"contactInfo"`
	SocialMedia map[string][]string `json:"socialMedia,omitempty"`
	IsBusiness  bool                `json:"isBusiness"`
}

// TranscriptState distinguishes "never attempted" from "attempted and failed"
// for a video. The zero value is TranscriptNotAttempted.
type TranscriptState string

const (
	TranscriptNotAttempted TranscriptState = ""
	TranscriptMissing      TranscriptState = "unavailable"
	TranscriptPresent      TranscriptState = "present"
)

// VideoRecord is one uploaded video. DurationSeconds is nil when the source
// duration string could not be parsed; it is never a raw string.
type VideoRecord struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Thumbnail       string          `json:"thumbnail"`
	DurationSeconds *int64          `json:"durationSeconds"`
	PublishedAt     time.Time       `json:"publishedAt"`
	ViewCount       uint64          `json:"viewCount"`
	URL             string          `json:"url"`
	TranscriptState TranscriptState `json:"transcriptState,omitempty"`
	Transcript      string          `json:"transcript,omitempty"`
}

// TranscriptStatus is the outcome tag of one extraction attempt.
type TranscriptStatus string

const (
	StatusSuccess     TranscriptStatus = "success"
	StatusUnavailable TranscriptStatus = "unavailable"
)

// TranscriptResult is the atomic outcome of extracting one video's transcript.
// Text is whitespace-joined and non-empty on success. Source names the
// strategy that produced it.
type TranscriptResult struct {
	Status TranscriptStatus `json:"status"`
	Text   string           `json:"text,omitempty"`
	Source string           `json:"source,omitempty"`
}

// Success builds a successful TranscriptResult.
func Success(text, source string) TranscriptResult {
	return TranscriptResult{Status: StatusSuccess, Text: text, Source: source}
}

// Unavailable is the terminal no-transcript result. Callers must not retry
// extraction for the same video within one ingestion run.
func Unavailable() TranscriptResult {
	return TranscriptResult{Status: StatusUnavailable}
}

// Summary is the final aggregate of one ingestion run. Videos holds only the
// transcript-bearing records, in upload-recency order. Immutable once returned.
type Summary struct {
	ChannelInfo *ChannelInfo  `json:"channelInfo"`
	Videos      []VideoRecord `json:"videos"`

	TotalVideosProcessed      int   `json:"totalVideosProcessed"`
	TotalTranscriptsExtracted int   `json:"totalTranscriptsExtracted"`
	TotalTranscriptChars      int   `json:"totalCharactersInTranscripts"`
	AverageDurationSeconds    int64 `json:"averageVideoLengthSeconds"`

	// ChannelAge is a coarse human bucket ("3 days", "2 months", "4 years 1 month").
	ChannelAge string `json:"channelAge"`

	// ListedVideos is every listed record with its final transcript state,
	// for persistence. Not part of the marshaled summary.
	ListedVideos []VideoRecord `json:"-"`
}
