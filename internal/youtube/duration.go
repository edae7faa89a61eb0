package youtube

import (
	"regexp"
	"strconv"
	"strings"
)

// Video durations arrive in two shapes: ISO-8601 from the Data API
// ("PT1H30M45S") and clock strings from scraped surfaces ("1:30:45", "7:45").
// Both normalize to total seconds here, at the listing stage, so nothing
// downstream ever sees a raw duration string.

var isoDurationRE = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseDuration converts an ISO-8601 or H:MM:SS / MM:SS duration string to
// total seconds. ok is false when the string fits neither format.
func ParseDuration(s string) (seconds int64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.HasPrefix(s, "P") {
		return parseISODuration(s)
	}
	return parseClockDuration(s)
}

func parseISODuration(s string) (int64, bool) {
	m := isoDurationRE.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	// "P" or "PT" alone carries no components.
	if m[1] == "" && m[2] == "" && m[3] == "" && m[4] == "" {
		return 0, false
	}
	days := atoi64(m[1])
	hours := atoi64(m[2])
	minutes := atoi64(m[3])
	secs := atoi64(m[4])
	return days*86400 + hours*3600 + minutes*60 + secs, true
}

func parseClockDuration(s string) (int64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	var total int64
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}

func atoi64(s string) int64 {
	if s == "" {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

// FormatDuration renders seconds as H:MM:SS, or M:SS under an hour.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return strconv.FormatInt(h, 10) + ":" + pad2(m) + ":" + pad2(s)
	}
	return strconv.FormatInt(m, 10) + ":" + pad2(s)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
