package youtube

import (
	"reflect"
	"testing"
)

func TestExtractLinksContact(t *testing.T) {
	text := `Contact me at coach@example.com or coach@example.com.
Also coach@example.com works. Call (555) 123-4567.
My site: https://example.com/courses`

	links := ExtractLinks(text)

	if !reflect.DeepEqual(links.Contact.Emails, []string{"coach@example.com"}) {
		t.Errorf("Emails = %v, want single deduplicated entry", links.Contact.Emails)
	}
	if len(links.Contact.Phones) != 1 {
		t.Errorf("Phones = %v, want one match", links.Contact.Phones)
	}
	if !reflect.DeepEqual(links.Contact.Websites, []string{"https://example.com/courses"}) {
		t.Errorf("Websites = %v", links.Contact.Websites)
	}
}

func TestExtractLinksSocialNotInWebsites(t *testing.T) {
	// A URL matching a social platform must land in SocialMedia only.
	text := `Follow https://instagram.com/mycoach and https://x.com/mycoach
and visit https://mycoach.example.org`

	links := ExtractLinks(text)

	if !reflect.DeepEqual(links.SocialMedia["instagram"], []string{"https://instagram.com/mycoach"}) {
		t.Errorf("instagram = %v", links.SocialMedia["instagram"])
	}
	if !reflect.DeepEqual(links.SocialMedia["twitter"], []string{"https://x.com/mycoach"}) {
		t.Errorf("twitter = %v", links.SocialMedia["twitter"])
	}
	if !reflect.DeepEqual(links.Contact.Websites, []string{"https://mycoach.example.org"}) {
		t.Errorf("Websites = %v, social URLs leaked into the website bucket", links.Contact.Websites)
	}
}

func TestExtractLinksSchemelessMention(t *testing.T) {
	links := ExtractLinks("find me on tiktok.com/@mycoach and t.me/mycoach")

	if !reflect.DeepEqual(links.SocialMedia["tiktok"], []string{"tiktok.com/@mycoach"}) {
		t.Errorf("tiktok = %v", links.SocialMedia["tiktok"])
	}
	if !reflect.DeepEqual(links.SocialMedia["telegram"], []string{"t.me/mycoach"}) {
		t.Errorf("telegram = %v", links.SocialMedia["telegram"])
	}
}

func TestExtractLinksMentionCoveredByFullURL(t *testing.T) {
	// The scheme-less scanner must not duplicate a handle already captured
	// as a full URL.
	links := ExtractLinks("https://instagram.com/mycoach")

	if got := links.SocialMedia["instagram"]; len(got) != 1 {
		t.Errorf("instagram = %v, want exactly one entry", got)
	}
}

func TestExtractLinksBusiness(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Welcome to my Official Store for coaching gear", true},
		{"I teach guitar on weekends", false},
		{"We are an enterprise training COMPANY", true},
	}
	for _, tt := range tests {
		if got := ExtractLinks(tt.text).IsBusiness; got != tt.want {
			t.Errorf("IsBusiness(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestDedupPreservesOrder(t *testing.T) {
	got := dedup([]string{"b", "a", "b", "c", "a"})
	if !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Errorf("dedup = %v", got)
	}
	if dedup(nil) != nil {
		t.Error("dedup(nil) should be nil")
	}
}
