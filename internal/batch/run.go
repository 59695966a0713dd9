// Package batch drives an ordered list of URLs through validation, fetch,
// download, and ledger checkpointing. Items are processed one at a time;
// per-item failures never abort the batch.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clip-archiver/internal/fetcher"
	"clip-archiver/internal/ledger"
	"clip-archiver/internal/model"
	"clip-archiver/internal/store"
)

type RunOptions struct {
	URLs           []string
	OutputDir      string
	BaseName       string
	ExportMetadata bool

	Fetcher fetcher.Fetcher
	Ledger  *ledger.Store

	// Quiet suppresses the per-item progress lines on stdout.
	Quiet bool
}

// Run executes one batch. The sequence counter is reset exactly once here,
// at batch start; the ledger is checkpointed after every recorded item so a
// crash loses at most the in-flight download. An empty or entirely invalid
// URL list yields a zero-progress result, not an error.
func Run(opts RunOptions) (model.BatchResult, error) {
	if opts.Fetcher == nil {
		return model.BatchResult{}, fmt.Errorf("a media fetcher is required")
	}
	if opts.ExportMetadata && opts.Ledger == nil {
		return model.BatchResult{}, fmt.Errorf("metadata export requires an open ledger")
	}

	outputDir := strings.TrimSpace(opts.OutputDir)
	if outputDir == "" {
		outputDir = "downloads"
	}

	result := model.BatchResult{Total: len(opts.URLs)}
	if opts.ExportMetadata {
		result.LedgerPath = opts.Ledger.Path()
	}
	if len(opts.URLs) == 0 {
		return result, nil
	}

	lock, err := store.AcquireBatchLock(outputDir)
	if err != nil {
		return model.BatchResult{}, err
	}
	defer func() {
		_ = lock.Release()
	}()

	seq := ResetSequence(outputDir, opts.BaseName)

	for i, url := range opts.URLs {
		outcome := processItem(&opts, outputDir, &seq, i, url)
		result.Outcomes = append(result.Outcomes, outcome)

		if outcome.Stage == model.StageInvalidURL {
			result.Invalid++
		} else {
			result.Valid++
		}
		if outcome.Success {
			result.Successful++
		} else {
			result.Failed++
		}
		if !opts.Quiet {
			printOutcome(outcome, len(opts.URLs))
		}
	}
	return result, nil
}

func processItem(opts *RunOptions, outputDir string, seq *Sequence, i int, url string) model.ItemOutcome {
	outcome := model.ItemOutcome{URL: url, Index: i + 1, Stage: model.StagePending}
	fail := func(stage string, err error) model.ItemOutcome {
		_ = model.AdvanceOutcome(&outcome, stage)
		if err != nil {
			outcome.Error = err.Error()
		}
		return outcome
	}

	if !opts.Fetcher.ValidateURL(url) {
		return fail(model.StageInvalidURL, fmt.Errorf("URL failed platform validation"))
	}
	_ = model.AdvanceOutcome(&outcome, model.StageValidated)

	if opts.ExportMetadata {
		// best-effort pre-check: only the URL can match before fetching,
		// Add re-checks both identity fields afterwards
		dup, err := opts.Ledger.ContainsURL(url)
		if err == nil && dup {
			_ = model.AdvanceOutcome(&outcome, model.StageAlreadyDownloaded)
			return outcome
		}
	}

	rec, err := opts.Fetcher.FetchInfo(url)
	if err != nil {
		return fail(model.StageFetchFailed, err)
	}
	_ = model.AdvanceOutcome(&outcome, model.StageFetched)
	outcome.Title = rec.Title
	outcome.ItemID = rec.ID

	template, index := seq.Allocate()
	if err := opts.Fetcher.Download(url, template); err != nil {
		return fail(model.StageDownloadFailed, err)
	}
	_ = model.AdvanceOutcome(&outcome, model.StageDownloaded)
	outcome.DownloadPath = resolveDownloadPath(outputDir, opts.BaseName, index, rec)

	if !opts.ExportMetadata {
		return outcome
	}

	if _, err := opts.Ledger.Add(rec, outcome.DownloadPath); err != nil {
		return fail(model.StageSaveFailed, err)
	}
	if err := opts.Ledger.Save(); err != nil {
		// the row stays in memory; the next successful Save persists it
		return fail(model.StageSaveFailed, err)
	}
	_ = model.AdvanceOutcome(&outcome, model.StageRecorded)
	return outcome
}

// resolveDownloadPath locates the file the fetcher just wrote. Exact
// expected name first; extension plus token or title substring as fallback,
// since yt-dlp may sanitize the title. Unresolvable paths stay empty.
func resolveDownloadPath(outputDir, baseName string, index int, rec model.InfoRecord) string {
	ext := strings.TrimSpace(rec.Ext)
	if ext == "" {
		ext = "mp4"
	}

	var exact string
	if strings.TrimSpace(baseName) != "" {
		exact = filepath.Join(outputDir, fmt.Sprintf("%s__%d.%s", baseName, index, ext))
	} else if rec.Title != "" {
		exact = filepath.Join(outputDir, fmt.Sprintf("%s.%s", rec.Title, ext))
	}
	if exact != "" {
		if _, err := os.Stat(exact); err == nil {
			return exact
		}
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return ""
	}
	suffix := "." + strings.ToLower(ext)
	token := ""
	if strings.TrimSpace(baseName) != "" {
		token = fmt.Sprintf("__%d.", index)
	}
	title := strings.ToLower(strings.TrimSpace(rec.Title))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), suffix) {
			continue
		}
		if token != "" {
			if strings.HasPrefix(name, baseName+"__") && strings.Contains(name, token) {
				return filepath.Join(outputDir, name)
			}
			continue
		}
		if title != "" && strings.Contains(strings.ToLower(name), title) {
			return filepath.Join(outputDir, name)
		}
	}
	return ""
}

func printOutcome(o model.ItemOutcome, total int) {
	id := o.ItemID
	if id == "" {
		id = o.URL
	}
	if o.Success {
		fmt.Printf("[%d/%d] done  %s (%s)\n", o.Index, total, id, o.Stage)
		return
	}
	fmt.Printf("[%d/%d] fail  %s (%s)\n", o.Index, total, id, o.Stage)
}
