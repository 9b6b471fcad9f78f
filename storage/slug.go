package storage

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// QuerySlug derives a filesystem-safe key for one logical query from a
// search URL: location, date range and guest count when present. When the
// URL yields nothing usable the run's start time names the files instead.
//
//	https://.../s/Lisbon--Portugal/homes?checkin=2026-09-01&checkout=2026-09-04&adults=2
//	→ lisbon-portugal_2026-09-01_2026-09-04_2-guests
func QuerySlug(searchURL string, now time.Time) string {
	u, err := url.Parse(searchURL)
	if err != nil {
		return timestampSlug(now)
	}

	var parts []string

	segments := strings.Split(u.Path, "/")
	for i, seg := range segments {
		if seg == "s" && i+1 < len(segments) && segments[i+1] != "" {
			parts = append(parts, sanitize(segments[i+1]))
			break
		}
	}

	q := u.Query()
	if in := q.Get("checkin"); in != "" {
		parts = append(parts, sanitize(in))
	}
	if out := q.Get("checkout"); out != "" {
		parts = append(parts, sanitize(out))
	}
	if adults := q.Get("adults"); adults != "" {
		parts = append(parts, sanitize(adults)+"-guests")
	}

	if len(parts) == 0 {
		return timestampSlug(now)
	}
	return strings.Join(parts, "_")
}

func sanitize(s string) string {
	s = strings.ToLower(s)
	s = slugUnsafe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func timestampSlug(now time.Time) string {
	return "run_" + now.Format("20060102_150405")
}
