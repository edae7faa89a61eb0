package training

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/coachtube/coachtube/internal/youtube"
)

func sampleSummary(videoCount int) *youtube.Summary {
	videos := make([]youtube.VideoRecord, videoCount)
	for i := range videos {
		d := int64(300 + i)
		videos[i] = youtube.VideoRecord{
			ID:              fmt.Sprintf("vid%08d", i),
			Title:           fmt.Sprintf("Lesson %d", i+1),
			DurationSeconds: &d,
			PublishedAt:     time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC),
			URL:             fmt.Sprintf("https://www.youtube.com/watch?v=vid%08d", i),
			TranscriptState: youtube.TranscriptPresent,
			Transcript:      fmt.Sprintf("transcript of lesson %d", i+1),
		}
	}
	return &youtube.Summary{
		ChannelInfo: &youtube.ChannelInfo{
			ID:              "UCcoach",
			Title:           "Guitar With Sam",
			Description:     "Fingerstyle guitar lessons for beginners",
			SubscriberCount: 1234567,
			Keywords:        []string{"guitar", "fingerstyle", "music", "lessons"},
			Country:         "CA",
			Verified:        true,
			JoinedAt:        time.Date(2019, 3, 12, 0, 0, 0, 0, time.UTC),
		},
		Videos: videos,
	}
}

func TestBuildTrainingDataDeterministic(t *testing.T) {
	sum := sampleSummary(5)

	a := BuildTrainingData(context.Background(), sum, "friendly", nil)
	b := BuildTrainingData(context.Background(), sum, "friendly", nil)

	ja, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	jb, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ja, jb) {
		t.Error("two builds from the same summary must be byte-identical")
	}
}

func TestBuildTrainingDataCap(t *testing.T) {
	td := BuildTrainingData(context.Background(), sampleSummary(30), "", nil)
	if len(td.Videos) != TrainingVideoCap {
		t.Errorf("len(Videos) = %d, want cap %d", len(td.Videos), TrainingVideoCap)
	}
	// Recency order preserved: the first listed video stays first.
	if td.Videos[0].Title != "Lesson 1" {
		t.Errorf("first video = %q, order not preserved", td.Videos[0].Title)
	}
}

func TestBuildTrainingDataFiltersTranscriptless(t *testing.T) {
	sum := sampleSummary(6)
	sum.Videos[1].TranscriptState = youtube.TranscriptMissing
	sum.Videos[1].Transcript = ""
	sum.Videos[4].TranscriptState = youtube.TranscriptNotAttempted
	sum.Videos[4].Transcript = ""

	td := BuildTrainingData(context.Background(), sum, "", nil)
	if len(td.Videos) != 4 {
		t.Fatalf("len(Videos) = %d, want 4 transcript-bearing", len(td.Videos))
	}
	for _, v := range td.Videos {
		if v.Transcript == "" {
			t.Errorf("video %q has no transcript", v.Title)
		}
	}
}

func TestBuildTrainingDataFields(t *testing.T) {
	td := BuildTrainingData(context.Background(), sampleSummary(2), "encouraging", nil)

	if td.Tone != "encouraging" {
		t.Errorf("Tone = %q", td.Tone)
	}
	if td.ChannelInfo.Name != "Guitar With Sam" || !td.ChannelInfo.Verified {
		t.Errorf("channel facts not carried: %+v", td.ChannelInfo)
	}
	if td.ChannelInfo.JoinedDate != "2019-03-12" {
		t.Errorf("JoinedDate = %q", td.ChannelInfo.JoinedDate)
	}
	v := td.Videos[0]
	if v.Summary != "Educational content: Lesson 1. Key topics covered in this video." {
		t.Errorf("template summary = %q", v.Summary)
	}
	if v.Duration != "5:00" {
		t.Errorf("Duration = %q, want formatted clock string", v.Duration)
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	td := BuildTrainingData(context.Background(), sampleSummary(3), "calm", nil)
	prompt := BuildSystemPrompt(td)

	for _, want := range []string{
		"You are Guitar With Sam.",
		"verified content creator with 1,234,567 subscribers",
		"fingerstyle guitar lessons for beginners",
		"1. Lesson 1",
		"3. Lesson 3",
		"guitar, fingerstyle, music",
		"Based in CA",
		"Your tone is calm.",
		"Respond as Guitar With Sam in first person",
		"**text**",
		"I focus on [your main topics]",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildSystemPromptDefaults(t *testing.T) {
	td := &TrainingData{ChannelInfo: ChannelFacts{Name: "NoFrills"}}
	prompt := BuildSystemPrompt(td)

	for _, want := range []string{
		"educational content creator",
		"Teaching and instruction",
		"Content strategy",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing default %q", want)
		}
	}
	if strings.Contains(prompt, "subscribers") {
		t.Error("zero subscriber count must not render a subscriber claim")
	}
}

func TestGroupDigits(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := groupDigits(tt.in); got != tt.want {
			t.Errorf("groupDigits(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
