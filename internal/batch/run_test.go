package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clip-archiver/internal/ledger"
	"clip-archiver/internal/model"
)

type fakeFetcher struct {
	outputDir string
	invalid   map[string]bool
	fetchErr  map[string]bool
	dlErr     map[string]bool
	recs      map[string]model.InfoRecord

	downloaded []string
}

func (f *fakeFetcher) ValidateURL(url string) bool {
	return !f.invalid[url]
}

func (f *fakeFetcher) FetchInfo(url string) (model.InfoRecord, error) {
	if f.fetchErr[url] {
		return model.InfoRecord{}, fmt.Errorf("fetch refused for %s", url)
	}
	return f.recs[url], nil
}

func (f *fakeFetcher) Download(url, outputTemplate string) error {
	if f.dlErr[url] {
		return fmt.Errorf("download refused for %s", url)
	}
	rec := f.recs[url]
	ext := rec.Ext
	if ext == "" {
		ext = "mp4"
	}
	name := strings.ReplaceAll(outputTemplate, "%(ext)s", ext)
	name = strings.ReplaceAll(name, "%(title)s", rec.Title)
	if err := os.WriteFile(filepath.Join(f.outputDir, name), []byte("media"), 0o644); err != nil {
		return err
	}
	f.downloaded = append(f.downloaded, name)
	return nil
}

func rec(id, title, url string) model.InfoRecord {
	return model.InfoRecord{ID: id, Title: title, WebpageURL: url, Ext: "mp4", Duration: 10}
}

func TestRun_ContinuesPastFailures(t *testing.T) {
	tmp := t.TempDir()
	url1 := "https://www.tiktok.com/@u/video/1"
	url2 := "https://bad.example.com/2"
	url3 := "https://www.tiktok.com/@u/video/3"
	url4 := "https://www.tiktok.com/@u/video/4"

	f := &fakeFetcher{
		outputDir: tmp,
		invalid:   map[string]bool{url2: true},
		fetchErr:  map[string]bool{url3: true},
		recs: map[string]model.InfoRecord{
			url1: rec("v1", "One", url1),
			url4: rec("v4", "Four", url4),
		},
	}
	led, err := ledger.Open(tmp, "")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = led.Close() }()

	res, err := Run(RunOptions{
		URLs:           []string{url1, url2, url3, url4},
		OutputDir:      tmp,
		BaseName:       "clip",
		ExportMetadata: true,
		Fetcher:        f,
		Ledger:         led,
		Quiet:          true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Total != 4 || res.Valid != 3 || res.Invalid != 1 {
		t.Fatalf("unexpected partition: %+v", res)
	}
	if res.Successful != 2 || res.Failed != 2 {
		t.Fatalf("unexpected totals: %+v", res)
	}

	// the failure at url3 must not prevent url4 from downloading
	stages := make([]string, 0, len(res.Outcomes))
	for _, o := range res.Outcomes {
		stages = append(stages, o.Stage)
	}
	want := []string{model.StageRecorded, model.StageInvalidURL, model.StageFetchFailed, model.StageRecorded}
	for i := range want {
		if stages[i] != want[i] {
			t.Fatalf("outcome %d stage = %q, want %q (all: %v)", i, stages[i], want[i], stages)
		}
	}

	rows, err := led.DataRows()
	if err != nil {
		t.Fatal(err)
	}
	if rows != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", rows)
	}
}

func TestRun_SequenceResumesAndPathsResolve(t *testing.T) {
	tmp := t.TempDir()
	touch(t, tmp, "clip__2.mp4")

	url := "https://www.tiktok.com/@u/video/9"
	f := &fakeFetcher{
		outputDir: tmp,
		recs:      map[string]model.InfoRecord{url: rec("v9", "Nine", url)},
	}
	led, err := ledger.Open(tmp, "")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = led.Close() }()

	res, err := Run(RunOptions{
		URLs:           []string{url},
		OutputDir:      tmp,
		BaseName:       "clip",
		ExportMetadata: true,
		Fetcher:        f,
		Ledger:         led,
		Quiet:          true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(f.downloaded) != 1 || f.downloaded[0] != "clip__3.mp4" {
		t.Fatalf("expected the download to take index 3, got %v", f.downloaded)
	}
	got := res.Outcomes[0].DownloadPath
	if got != filepath.Join(tmp, "clip__3.mp4") {
		t.Fatalf("unexpected resolved path %q", got)
	}
}

func TestRun_URLPreCheckSkipsKnownItems(t *testing.T) {
	tmp := t.TempDir()
	url := "https://www.tiktok.com/@u/video/1"

	led, err := ledger.Open(tmp, "")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = led.Close() }()
	if _, err := led.Add(rec("v1", "One", url), ""); err != nil {
		t.Fatal(err)
	}

	f := &fakeFetcher{outputDir: tmp, recs: map[string]model.InfoRecord{url: rec("v1", "One", url)}}
	res, err := Run(RunOptions{
		URLs:           []string{url},
		OutputDir:      tmp,
		ExportMetadata: true,
		Fetcher:        f,
		Ledger:         led,
		Quiet:          true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.Successful != 1 {
		t.Fatalf("skip must count as success: %+v", res)
	}
	if res.Outcomes[0].Stage != model.StageAlreadyDownloaded {
		t.Fatalf("expected already_downloaded, got %q", res.Outcomes[0].Stage)
	}
	if len(f.downloaded) != 0 {
		t.Fatalf("pre-checked item must not be downloaded again: %v", f.downloaded)
	}
}

func TestRun_EmptyURLListIsZeroProgress(t *testing.T) {
	f := &fakeFetcher{outputDir: t.TempDir()}
	res, err := Run(RunOptions{URLs: nil, OutputDir: t.TempDir(), Fetcher: f, Quiet: true})
	if err != nil {
		t.Fatalf("empty list must not error: %v", err)
	}
	if res.Total != 0 || res.Successful != 0 || res.Failed != 0 {
		t.Fatalf("expected zero-progress result, got %+v", res)
	}
}

func TestRun_WithoutMetadataExportSkipsLedger(t *testing.T) {
	tmp := t.TempDir()
	url := "https://www.tiktok.com/@u/video/5"
	f := &fakeFetcher{outputDir: tmp, recs: map[string]model.InfoRecord{url: rec("v5", "Five", url)}}

	res, err := Run(RunOptions{
		URLs:      []string{url},
		OutputDir: tmp,
		BaseName:  "clip",
		Fetcher:   f,
		Quiet:     true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Successful != 1 {
		t.Fatalf("expected success without export: %+v", res)
	}
	if res.Outcomes[0].Stage != model.StageDownloaded {
		t.Fatalf("expected terminal downloaded stage, got %q", res.Outcomes[0].Stage)
	}
	if res.LedgerPath != "" {
		t.Fatalf("no ledger path expected, got %q", res.LedgerPath)
	}
}

func TestRun_ReleasesBatchLock(t *testing.T) {
	tmp := t.TempDir()
	url := "https://www.tiktok.com/@u/video/1"
	f := &fakeFetcher{outputDir: tmp, recs: map[string]model.InfoRecord{url: rec("v1", "One", url)}}

	if _, err := Run(RunOptions{URLs: []string{url}, OutputDir: tmp, Fetcher: f, Quiet: true}); err != nil {
		t.Fatal(err)
	}
	// a second run acquires the lock again without trouble
	if _, err := Run(RunOptions{URLs: []string{url}, OutputDir: tmp, Fetcher: f, Quiet: true}); err != nil {
		t.Fatalf("second run blocked by stale lock: %v", err)
	}
}
