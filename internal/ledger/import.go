package ledger

import (
	"os"
	"path/filepath"
	"strings"

	"clip-archiver/internal/model"
	"clip-archiver/internal/store"
)

// ImportExisting rebuilds ledger rows from sidecar info-documents left by
// earlier downloads. For every *.info.json in outputDir it parses the
// record, tries to locate the matching media file (custom-name token first,
// title substring otherwise) and feeds the record through Add. Duplicates
// and unmatchable media paths are tolerated; only the count of records fed
// to the ledger is returned. The caller decides when to Save.
func (s *Store) ImportExisting(outputDir, baseName string) (int, error) {
	sidecars, err := store.ListSidecars(outputDir)
	if err != nil {
		return 0, err
	}
	if len(sidecars) == 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return 0, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	processed := 0
	for _, sidecar := range sidecars {
		var rec model.InfoRecord
		if err := store.ReadJSON(sidecar, &rec); err != nil {
			continue
		}

		mediaPath := locateMedia(outputDir, names, sidecar, rec, baseName)
		if _, err := s.Add(rec, mediaPath); err != nil {
			return processed, err
		}
		processed++
	}
	return processed, nil
}

func locateMedia(outputDir string, names []string, sidecar string, rec model.InfoRecord, baseName string) string {
	ext := strings.TrimSpace(rec.Ext)
	if ext == "" {
		ext = "mp4"
	}
	suffix := "." + strings.ToLower(ext)

	if strings.TrimSpace(baseName) != "" {
		infoBase := strings.TrimSuffix(filepath.Base(sidecar), ".info.json")
		prefix := baseName + "__"
		for _, name := range names {
			if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(strings.ToLower(name), suffix) {
				continue
			}
			// exact stem match only: clip__1.info.json must not claim clip__10.mp4
			stem := strings.TrimSuffix(name, filepath.Ext(name))
			if stem == infoBase {
				return filepath.Join(outputDir, name)
			}
		}
		return ""
	}

	title := strings.ToLower(strings.TrimSpace(rec.Title))
	if title == "" {
		return ""
	}
	for _, name := range names {
		if !strings.HasSuffix(strings.ToLower(name), suffix) {
			continue
		}
		if strings.Contains(strings.ToLower(name), title) {
			return filepath.Join(outputDir, name)
		}
	}
	return ""
}
