package fetcher

import (
	"strings"

	"clip-archiver/internal/model"
	"clip-archiver/internal/urls"
)

// TikTok wraps the generic fetcher with TikTok-specific handling: strict
// domain validation (including the vm/vt short-link hosts) and share-link
// cleanup before fetching.
type TikTok struct {
	Generic
}

func (t *TikTok) ValidateURL(url string) bool {
	return urls.Validate(url, urls.PlatformTikTok)
}

func (t *TikTok) FetchInfo(url string) (model.InfoRecord, error) {
	return t.Generic.FetchInfo(cleanShareURL(url))
}

func (t *TikTok) Download(url, outputTemplate string) error {
	return t.Generic.Download(cleanShareURL(url), outputTemplate)
}

// cleanShareURL drops the share-sheet query noise TikTok appends to copied
// links. Short vm/vt links are left alone; their path is the token.
func cleanShareURL(url string) string {
	u := strings.TrimSpace(url)
	if strings.Contains(u, "vm.tiktok.com") || strings.Contains(u, "vt.tiktok.com") {
		return u
	}
	if i := strings.IndexByte(u, '?'); i > 0 {
		return u[:i]
	}
	return u
}
