package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

// Link extraction over channel free text (description + branding fields).
// Matchers run in a fixed order: email, phone, generic URL, then the
// social-platform allowlist. A URL whose domain matches a platform goes into
// SocialMedia[platform] and never into the Websites bucket.

var (
	emailRE = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	// Loose, North-American-biased. Creators rarely publish anything else.
	phoneRE = regexp.MustCompile(`(\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`)
	urlRE   = regexp.MustCompile(`https?://[^\s<>"']+`)
)

// socialPlatform pairs a platform name with its domains and a pattern that
// also catches scheme-less mentions ("instagram.com/foo") in running text.
type socialPlatform struct {
	name      string
	domains   []string
	mentionRE *regexp.Regexp
}

// Allowlist order is fixed so extraction output is deterministic.
var socialPlatforms = []socialPlatform{
	{"instagram", []string{"instagram.com"}, regexp.MustCompile(`instagram\.com/[a-zA-Z0-9._]+`)},
	{"twitter", []string{"twitter.com", "x.com"}, regexp.MustCompile(`(?:twitter\.com|x\.com)/[a-zA-Z0-9._]+`)},
	{"facebook", []string{"facebook.com"}, regexp.MustCompile(`facebook\.com/[a-zA-Z0-9._]+`)},
	{"linkedin", []string{"linkedin.com"}, regexp.MustCompile(`linkedin\.com/(?:in|company)/[a-zA-Z0-9._-]+`)},
	{"tiktok", []string{"tiktok.com"}, regexp.MustCompile(`tiktok\.com/@[a-zA-Z0-9._]+`)},
	{"youtube", []string{"youtube.com", "youtu.be"}, regexp.MustCompile(`youtube\.com/(?:c/|channel/|@)[a-zA-Z0-9._-]+`)},
	{"discord", []string{"discord.gg", "discord.com"}, regexp.MustCompile(`discord\.(?:gg|com)/[a-zA-Z0-9._-]+`)},
	{"telegram", []string{"t.me"}, regexp.MustCompile(`t\.me/[a-zA-Z0-9._]+`)},
	{"snapchat", []string{"snapchat.com"}, regexp.MustCompile(`snapchat\.com/add/[a-zA-Z0-9._]+`)},
	{"twitch", []string{"twitch.tv"}, regexp.MustCompile(`twitch\.tv/[a-zA-Z0-9._]+`)},
}

// businessKeywords flag a channel as a business presence when any appears
// case-insensitively in the combined text.
var businessKeywords = []string{"business", "company", "corporate", "enterprise", "brand", "store", "shop", "official"}

// Links is the result of one extraction pass.
type Links struct {
	Contact     ContactInfo
	SocialMedia map[string][]string
	IsBusiness  bool
}

// ExtractLinks scans text for contact details and social handles.
func ExtractLinks(text string) Links {
	out := Links{SocialMedia: map[string][]string{}}

	out.Contact.Emails = dedup(emailRE.FindAllString(text, -1))
	out.Contact.Phones = dedup(phoneRE.FindAllString(text, -1))

	for _, raw := range dedup(urlRE.FindAllString(text, -1)) {
		if platform := matchPlatform(raw); platform != "" {
			out.SocialMedia[platform] = append(out.SocialMedia[platform], raw)
			continue
		}
		out.Contact.Websites = append(out.Contact.Websites, raw)
	}

	// Scheme-less mentions. Skip fragments already covered by a full URL.
	for _, p := range socialPlatforms {
		for _, mention := range dedup(p.mentionRE.FindAllString(text, -1)) {
			if containsSubstring(out.SocialMedia[p.name], mention) {
				continue
			}
			out.SocialMedia[p.name] = append(out.SocialMedia[p.name], mention)
		}
	}
	for name, links := range out.SocialMedia {
		out.SocialMedia[name] = dedup(links)
	}

	lower := strings.ToLower(text)
	for _, kw := range businessKeywords {
		if strings.Contains(lower, kw) {
			out.IsBusiness = true
			break
		}
	}
	return out
}

// matchPlatform returns the platform name for a full URL, or "" when its
// host matches no allowlisted domain.
func matchPlatform(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	for _, p := range socialPlatforms {
		for _, d := range p.domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return p.name
			}
		}
	}
	return ""
}

// dedup removes duplicates preserving first-occurrence order.
func dedup(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func containsSubstring(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}
