package ledger

import (
	"fmt"
	"strings"

	"clip-archiver/internal/model"
)

// IdentityOf returns the (item ID, source URL) pair used for duplicate
// detection. Total: an empty record yields two empty strings, which never
// match anything.
func IdentityOf(rec model.InfoRecord) (string, string) {
	return strings.TrimSpace(rec.ID), strings.TrimSpace(rec.WebpageURL)
}

// ExtractHashtags collects whitespace-separated #tokens from a description,
// comma-joined, order and duplicates preserved.
func ExtractHashtags(description string) string {
	if description == "" {
		return ""
	}
	var tags []string
	for _, word := range strings.Fields(description) {
		if strings.HasPrefix(word, "#") {
			tags = append(tags, word)
		}
	}
	return strings.Join(tags, ", ")
}

// FormatDuration renders seconds as MM:SS; zero renders empty.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatUploadDate turns an 8-digit YYYYMMDD stamp into YYYY-MM-DD.
// Anything else passes through unchanged.
func FormatUploadDate(raw string) string {
	if len(raw) != 8 || !allDigits(raw) {
		return raw
	}
	return raw[:4] + "-" + raw[4:6] + "-" + raw[6:8]
}

// Resolution renders WxH, or empty when either dimension is unknown.
func Resolution(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", width, height)
}

// VideoQuality prefers the fetcher's human format note over the raw format
// string.
func VideoQuality(rec model.InfoRecord) string {
	if strings.TrimSpace(rec.FormatNote) != "" {
		return rec.FormatNote
	}
	return rec.Format
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
