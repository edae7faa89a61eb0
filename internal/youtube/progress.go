package youtube

// Progress is a point-in-time snapshot of an ingestion run.
type Progress struct {
	VideosProcessed int `json:"videos_processed"`
	VideosTotal     int `json:"videos_total"`
	Percent         int `json:"percent"`
}

// ProgressSink receives progress updates during ingestion. Implementations
// must be safe to call from the orchestrator goroutine and should return
// quickly; slow sinks stall the run.
type ProgressSink interface {
	Publish(p Progress)
}

// ProgressFunc adapts a function to the ProgressSink interface.
type ProgressFunc func(p Progress)

func (f ProgressFunc) Publish(p Progress) { f(p) }

// nopSink is used when the caller does not care about progress.
type nopSink struct{}

func (nopSink) Publish(Progress) {}
