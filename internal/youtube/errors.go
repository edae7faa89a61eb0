package youtube

import "errors"

// Sentinel errors. All three are fatal for an ingestion run; a video whose
// transcript cannot be extracted is not an error, it is TranscriptResult
// with StatusUnavailable.
var (
	// ErrResolution means the channel URL could not be mapped to a canonical id.
	ErrResolution = errors.New("youtube: could not resolve channel id")

	// ErrChannelNotFound means the canonical id resolved but no channel exists
	// or it is inaccessible.
	ErrChannelNotFound = errors.New("youtube: channel not found")

	// ErrNoUploads means the channel has no resolvable uploads playlist.
	ErrNoUploads = errors.New("youtube: channel has no uploads playlist")
)
