// Package training turns an ingestion summary into the coach persona: the
// training-data document and the system prompt that drives chat.
package training

import (
	"context"
	"fmt"
	"strings"

	"github.com/coachtube/coachtube/internal/engine"
	"github.com/coachtube/coachtube/internal/youtube"
)

// TrainingVideoCap bounds how many videos feed the persona. More adds prompt
// weight without adding much expertise signal.
const TrainingVideoCap = 20

// VideoSample is one video's contribution to the training data.
type VideoSample struct {
	Title       string `json:"title"`
	Transcript  string `json:"transcript"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Duration    string `json:"duration,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	URL         string `json:"url,omitempty"`
}

// ChannelFacts is the flattened channel snapshot carried in the training data.
type ChannelFacts struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	SubscriberCount uint64   `json:"subscriberCount,omitempty"`
	VideoCount      uint64   `json:"videoCount,omitempty"`
	Thumbnail       string   `json:"thumbnail,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	Verified        bool     `json:"verified,omitempty"`
	Monetized       bool     `json:"isMonetized,omitempty"`
	Location        string   `json:"location,omitempty"`
	JoinedDate      string   `json:"joinedDate,omitempty"`
}

// TrainingData is the full persona document. It is persisted as one JSON blob
// and superseded wholesale on retrain, never patched.
type TrainingData struct {
	Videos      []VideoSample `json:"videos"`
	ChannelInfo ChannelFacts  `json:"channelInfo"`
	Tone        string        `json:"tone,omitempty"`
}

// Summarizer produces a one-line summary of a video for the training data.
type Summarizer interface {
	Summarize(ctx context.Context, title, transcript string) (string, error)
}

// TemplateSummarizer is the default: a fixed template, no network, so
// training-data builds stay deterministic and instant.
type TemplateSummarizer struct{}

func (TemplateSummarizer) Summarize(_ context.Context, title, _ string) (string, error) {
	return fmt.Sprintf("Educational content: %s. Key topics covered in this video.", title), nil
}

// LLMSummarizer asks the configured model for a real summary. Falls back to
// the template on error so a flaky model never fails a training run.
type LLMSummarizer struct{}

const summarySystem = "You are an expert at summarizing YouTube video content. Create a concise summary that captures the main points and key insights from the video transcript."

func (LLMSummarizer) Summarize(ctx context.Context, title, transcript string) (string, error) {
	prompt := fmt.Sprintf("Title: %s\n\nTranscript: %s\n\nPlease provide a comprehensive summary of this video content.",
		title, engine.Truncate(transcript, 12000))
	out, err := engine.Summarize(ctx, summarySystem, prompt, 500)
	if err != nil || strings.TrimSpace(out) == "" {
		return TemplateSummarizer{}.Summarize(ctx, title, transcript)
	}
	return strings.TrimSpace(out), nil
}

// BuildTrainingData assembles the persona document from an ingestion summary.
// Only transcript-bearing videos contribute, capped at TrainingVideoCap in
// upload-recency order. With the default TemplateSummarizer the output is
// fully deterministic for a given summary.
func BuildTrainingData(ctx context.Context, sum *youtube.Summary, tone string, s Summarizer) *TrainingData {
	if s == nil {
		s = TemplateSummarizer{}
	}

	videos := make([]VideoSample, 0, TrainingVideoCap)
	for _, v := range sum.Videos {
		if v.TranscriptState != youtube.TranscriptPresent || v.Transcript == "" {
			continue
		}
		if len(videos) == TrainingVideoCap {
			break
		}
		summary, err := s.Summarize(ctx, v.Title, v.Transcript)
		if err != nil {
			summary, _ = TemplateSummarizer{}.Summarize(ctx, v.Title, v.Transcript)
		}
		sample := VideoSample{
			Title:      v.Title,
			Transcript: v.Transcript,
			Summary:    summary,
			Thumbnail:  v.Thumbnail,
			URL:        v.URL,
		}
		if v.Description != "" {
			sample.Description = v.Description
		}
		if v.DurationSeconds != nil {
			sample.Duration = youtube.FormatDuration(*v.DurationSeconds)
		}
		if !v.PublishedAt.IsZero() {
			sample.PublishedAt = v.PublishedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		videos = append(videos, sample)
	}

	info := sum.ChannelInfo
	facts := ChannelFacts{
		Name:            info.Title,
		Description:     info.Description,
		SubscriberCount: info.SubscriberCount,
		VideoCount:      info.VideoCount,
		Thumbnail:       info.Thumbnail,
		Keywords:        info.Keywords,
		Verified:        info.Verified,
		Monetized:       info.Monetized,
		Location:        info.Country,
	}
	if !info.JoinedAt.IsZero() {
		facts.JoinedDate = info.JoinedAt.UTC().Format("2006-01-02")
	}

	return &TrainingData{Videos: videos, ChannelInfo: facts, Tone: tone}
}

// BuildSystemPrompt renders the persona prompt: identity framing, enumerated
// expertise from video titles, a handful of knowledge-area facts, and fixed
// behavioral instructions. Pure string assembly, no model calls.
func BuildSystemPrompt(td *TrainingData) string {
	info := td.ChannelInfo

	desc := info.Description
	if desc == "" {
		desc = "Educational content creator"
	}

	creator := "content creator"
	if info.SubscriberCount > 0 {
		creator = fmt.Sprintf("content creator with %s subscribers", groupDigits(info.SubscriberCount))
	}
	if info.Verified {
		creator = "verified " + creator
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. You are a %s who specializes in %s.\n\n",
		info.Name, creator, strings.ToLower(desc))

	b.WriteString("Your expertise includes:\n")
	for i, v := range td.Videos {
		fmt.Fprintf(&b, "%d. %s\n", i+1, v.Title)
	}

	b.WriteString("\nKey knowledge areas:\n- Educational content creation\n")
	if len(info.Keywords) > 0 {
		kw := info.Keywords
		if len(kw) > 3 {
			kw = kw[:3]
		}
		fmt.Fprintf(&b, "- %s\n", strings.Join(kw, ", "))
	} else {
		b.WriteString("- Teaching and instruction\n")
	}
	if info.Location != "" {
		fmt.Fprintf(&b, "- Based in %s\n", info.Location)
	} else {
		b.WriteString("- Content strategy\n")
	}

	if td.Tone != "" {
		fmt.Fprintf(&b, "\nYour tone is %s.\n", td.Tone)
	}

	fmt.Fprintf(&b, "\nRespond as %s in first person. Use \"I\", \"my\", \"me\" when referring to yourself. Be helpful, knowledgeable, and authentic to your teaching style. Share insights from your experience creating educational content.\n\n", info.Name)
	b.WriteString("When responding, use professional formatting with bold text for emphasis. Use **text** for bold formatting, numbered lists, and clear structure. Make your responses engaging and professional like a high-quality chatbot.\n\n")
	b.WriteString(`If asked about topics not in your expertise, say "I focus on [your main topics] and would be happy to help with questions about those areas."`)

	return b.String()
}

// groupDigits renders n with comma thousands separators.
func groupDigits(n uint64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
