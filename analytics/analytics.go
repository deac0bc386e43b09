// Package analytics provides privacy-first page-view analytics for the
// public pages of the site. Client IPs are never stored; only salted hashes.
package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
)

// Visit represents a single human page view.
type Visit struct {
	ID        int64
	VisitorID string // salted hash of IP and User-Agent
	IPHash    string
	Browser   string
	OS        string
	Device    string // Desktop, Mobile, Tablet
	Path      string
	Referrer  string
	Timestamp time.Time
}

// BotVisit represents a single crawler page view.
type BotVisit struct {
	ID        int64
	BotName   string
	IPHash    string
	UserAgent string
	Path      string
	Timestamp time.Time
}

// Stats holds aggregated analytics for a period.
type Stats struct {
	Days           int
	UniqueVisitors int
	TotalViews     int
	BotVisits      int
	TopPages       []PageStat
	BrowserStats   []DimensionStat
	DeviceStats    []DimensionStat
	ReferrerStats  []DimensionStat
	DailyViews     []DailyView
}

// PageStat represents page view counts for one path.
type PageStat struct {
	Path  string
	Views int
}

// DimensionStat represents a dimension breakdown (browser, device, ...).
type DimensionStat struct {
	Name  string
	Count int
}

// DailyView represents views per day.
type DailyView struct {
	Date  string
	Views int
}

func hashWithSalt(salt string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(salt))
	h.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ParseUserAgent extracts browser, OS, and device from a User-Agent string.
func ParseUserAgent(ua string) (browser, os, device string) {
	ua = strings.ToLower(ua)

	// more specific patterns first: Edge and Opera UAs also contain "chrome"
	switch {
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr/"):
		browser = "Opera"
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	default:
		browser = "Other"
	}

	// Android UAs contain "linux"
	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	default:
		os = "Other"
	}

	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		device = "Tablet"
	case strings.Contains(ua, "mobile"):
		device = "Mobile"
	default:
		device = "Desktop"
	}
	return
}

var botPatterns = []struct {
	pattern string
	name    string
}{
	{"googlebot", "Googlebot"},
	{"bingbot", "Bingbot"},
	{"yandex", "Yandex"},
	{"baidu", "Baidu"},
	{"duckduckbot", "DuckDuckBot"},
	{"facebookexternalhit", "Facebook"},
	{"twitterbot", "Twitterbot"},
	{"linkedinbot", "LinkedIn"},
	{"ahrefsbot", "Ahrefs"},
	{"semrushbot", "SEMrush"},
	{"slurp", "Yahoo Slurp"},
	{"crawler", "Generic Crawler"},
	{"spider", "Generic Spider"},
}

// IsBot reports whether ua is likely a crawler.
func IsBot(ua string) bool {
	ua = strings.ToLower(ua)
	if ua == "" {
		return true
	}
	for _, s := range []string{"bot", "crawl", "spider", "slurp", "scrape", "curl/", "wget/", "python-requests"} {
		if strings.Contains(ua, s) {
			return true
		}
	}
	return false
}

// ExtractBotName names the crawler behind ua.
func ExtractBotName(ua string) string {
	ua = strings.ToLower(ua)
	for _, b := range botPatterns {
		if strings.Contains(ua, b.pattern) {
			return b.name
		}
	}
	if strings.Contains(ua, "bot") {
		return "Other Bot"
	}
	return "Unknown"
}

var referrerDomainRegex = regexp.MustCompile(`^https?://(?:www\.)?([^/:]+)`)

// CleanReferrer reduces a referrer URL to a source name. Referrers from
// ownHost count as Direct.
func CleanReferrer(ref, ownHost string) string {
	if ref == "" {
		return "Direct"
	}
	lower := strings.ToLower(ref)
	for _, se := range []struct{ needle, name string }{
		{"google.", "Google"},
		{"bing.", "Bing"},
		{"duckduckgo.", "DuckDuckGo"},
		{"github.", "GitHub"},
		{"linkedin.", "LinkedIn"},
	} {
		if strings.Contains(lower, se.needle) {
			return se.name
		}
	}
	m := referrerDomainRegex.FindStringSubmatch(lower)
	if len(m) < 2 {
		return "Other"
	}
	if ownHost != "" && strings.TrimPrefix(strings.ToLower(ownHost), "www.") == m[1] {
		return "Direct"
	}
	return m[1]
}
