package youtube

import (
	"errors"
	"testing"
)

func TestParseChannelURL(t *testing.T) {
	tests := []struct {
		in      string
		kind    IdentifierKind
		value   string
		wantErr bool
	}{
		{"https://www.youtube.com/channel/UCabc123_-", KindCanonical, "UCabc123_-", false},
		{"https://youtube.com/@somecoach", KindHandle, "somecoach", false},
		{"@somecoach", KindHandle, "somecoach", false},
		{"  @somecoach  ", KindHandle, "somecoach", false},
		{"https://www.youtube.com/c/SomeCoach", KindCustomURL, "SomeCoach", false},
		{"https://www.youtube.com/user/legacyname", KindUsername, "legacyname", false},
		{"https://www.youtube.com/SomeVanity", KindCustomURL, "SomeVanity", false},
		{"https://example.com/not-youtube", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		got, err := ParseChannelURL(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseChannelURL(%q) expected error, got %+v", tt.in, got)
			} else if !errors.Is(err, ErrResolution) {
				t.Errorf("ParseChannelURL(%q) error %v, want ErrResolution", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseChannelURL(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got.Kind != tt.kind || got.Value != tt.value {
			t.Errorf("ParseChannelURL(%q) = {%s %s}, want {%s %s}", tt.in, got.Kind, got.Value, tt.kind, tt.value)
		}
	}
}

func TestParseChannelURLPatternPriority(t *testing.T) {
	// /channel/ must win over the catch-all vanity pattern, and /c/ over it too.
	got, err := ParseChannelURL("https://www.youtube.com/channel/UCxyz")
	if err != nil || got.Kind != KindCanonical {
		t.Fatalf("got %+v, %v; canonical pattern must take priority", got, err)
	}
	got, err = ParseChannelURL("https://www.youtube.com/c/xyz")
	if err != nil || got.Kind != KindCustomURL || got.Value != "xyz" {
		t.Fatalf("got %+v, %v; /c/ pattern must take priority over vanity", got, err)
	}
}
