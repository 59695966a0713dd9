package urls

import (
	"strings"
	"testing"
)

func TestValidate_PlatformDomains(t *testing.T) {
	cases := []struct {
		url      string
		platform string
		want     bool
	}{
		{"https://www.tiktok.com/@user/video/123", PlatformTikTok, true},
		{"https://vm.tiktok.com/ZM1234/", PlatformTikTok, true},
		{"https://youtu.be/abc123", PlatformTikTok, false},
		{"https://youtu.be/abc123", PlatformYouTube, true},
		{"https://example.com/video", "", true},
		{"ftp://tiktok.com/x", PlatformTikTok, false},
		{"not a url", PlatformTikTok, false},
		{"", PlatformTikTok, false},
	}
	for _, tc := range cases {
		if got := Validate(tc.url, tc.platform); got != tc.want {
			t.Fatalf("Validate(%q, %q) = %v, want %v", tc.url, tc.platform, got, tc.want)
		}
	}
}

func TestDetectPlatform(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.tiktok.com/@u/video/1", PlatformTikTok},
		{"https://m.youtube.com/watch?v=1", PlatformYouTube},
		{"https://x.com/u/status/1", PlatformTwitter},
		{"https://example.com/v", ""},
	}
	for _, tc := range cases {
		if got := DetectPlatform(tc.url); got != tc.want {
			t.Fatalf("DetectPlatform(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestNormalize_StripsTrackingAndWWW(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.TikTok.com/@u/video/1/?utm_source=share", "https://tiktok.com/@u/video/1"},
		// a surviving parameter must keep a well-formed "?" separator
		{"https://tiktok.com/@u/video/1?utm_source=share&lang=en", "https://tiktok.com/@u/video/1?lang=en"},
		{"https://tiktok.com/@u/video/1?lang=en&utm_medium=copy", "https://tiktok.com/@u/video/1?lang=en"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	a := Normalize("https://tiktok.com/@u/video/1?utm_source=x&lang=en")
	b := Normalize("https://tiktok.com/@u/video/1?lang=en")
	if a != b {
		t.Fatalf("tracking-stripped spellings must dedupe: %q vs %q", a, b)
	}
}

func TestDedupe_PreservesOrderAndSpelling(t *testing.T) {
	in := []string{
		"https://www.tiktok.com/@u/video/1",
		"https://tiktok.com/@u/video/1/",
		"https://www.tiktok.com/@u/video/2",
	}
	got := Dedupe(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 unique URLs, got %d", len(got))
	}
	if got[0] != in[0] || got[1] != in[2] {
		t.Fatalf("unexpected dedupe result: %v", got)
	}
}

func TestProcessBatchText(t *testing.T) {
	text := "first https://www.tiktok.com/@u/video/1\njunk line\nhttps://example.com/nope\nhttps://vm.tiktok.com/Z2/"
	valid, invalid := ProcessBatchText(text, PlatformTikTok)
	if len(valid) != 2 {
		t.Fatalf("expected 2 valid URLs, got %v", valid)
	}
	if len(invalid) != 1 || !strings.Contains(invalid[0], "example.com") {
		t.Fatalf("expected the example.com URL to be invalid, got %v", invalid)
	}
}
