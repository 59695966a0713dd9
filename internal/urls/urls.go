// Package urls validates and normalizes platform video URLs and extracts
// them from pasted batch text.
package urls

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	PlatformTikTok    = "tiktok"
	PlatformYouTube   = "youtube"
	PlatformInstagram = "instagram"
	PlatformTwitter   = "twitter"
)

var supportedDomains = map[string][]string{
	PlatformTikTok:    {"tiktok.com", "vm.tiktok.com", "vt.tiktok.com", "www.tiktok.com"},
	PlatformYouTube:   {"youtube.com", "www.youtube.com", "youtu.be", "m.youtube.com"},
	PlatformInstagram: {"instagram.com", "www.instagram.com", "instagr.am"},
	PlatformTwitter:   {"twitter.com", "www.twitter.com", "x.com", "www.x.com"},
}

var candidatePattern = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)

var trackingParamPattern = regexp.MustCompile(`[?&](?:utm_source|utm_medium|utm_campaign|utm_term|utm_content)=[^&]*`)

// NormalizePlatform maps user input to a known platform name, or empty.
func NormalizePlatform(raw string) string {
	p := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := supportedDomains[p]; ok {
		return p
	}
	return ""
}

// Validate reports whether u is a well-formed http(s) URL on the given
// platform's domains. With an empty platform any http(s) URL passes.
func Validate(u, platform string) bool {
	u = strings.TrimSpace(u)
	if u == "" {
		return false
	}
	parsed, err := url.Parse(u)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	platform = NormalizePlatform(platform)
	if platform == "" {
		return true
	}
	host := strings.ToLower(parsed.Host)
	for _, domain := range supportedDomains[platform] {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// DetectPlatform returns the platform owning the URL's host, or empty.
func DetectPlatform(u string) string {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.ToLower(parsed.Host)
	for platform, domains := range supportedDomains {
		for _, domain := range domains {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return platform
			}
		}
	}
	return ""
}

// Normalize produces the comparison form used for dedup: lowercased,
// tracking parameters stripped, www. folded, trailing slash dropped.
func Normalize(u string) string {
	v := strings.ToLower(strings.TrimSpace(u))
	if v == "" {
		return ""
	}
	v = trackingParamPattern.ReplaceAllString(v, "")
	// stripping the first parameter leaves the next one behind "&"
	if i := strings.IndexAny(v, "?&"); i >= 0 && v[i] == '&' {
		v = v[:i] + "?" + v[i+1:]
	}
	v = strings.TrimRight(v, "/")
	if strings.HasPrefix(v, "http://www.") {
		v = "http://" + strings.TrimPrefix(v, "http://www.")
	}
	if strings.HasPrefix(v, "https://www.") {
		v = "https://" + strings.TrimPrefix(v, "https://www.")
	}
	return v
}

// Dedupe removes duplicate URLs by normalized form, preserving first-seen
// order and the original spelling.
func Dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, u := range list {
		key := Normalize(u)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, u)
	}
	return out
}

// Partition validates each URL against the platform and splits the list
// into valid and invalid, both in input order. Valid URLs are deduped.
func Partition(list []string, platform string) (valid, invalid []string) {
	valid = make([]string, 0, len(list))
	invalid = make([]string, 0)
	for _, u := range list {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if Validate(u, platform) {
			valid = append(valid, u)
		} else {
			invalid = append(invalid, u)
		}
	}
	return Dedupe(valid), invalid
}

// ExtractFromText pulls http(s) URL candidates out of free-form text.
func ExtractFromText(text string) []string {
	return candidatePattern.FindAllString(text, -1)
}

// ProcessBatchText extracts candidate URLs from pasted text and partitions
// them for the platform.
func ProcessBatchText(text, platform string) (valid, invalid []string) {
	return Partition(ExtractFromText(text), platform)
}
