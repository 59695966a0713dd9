package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clip-archiver/internal/batch"
	"clip-archiver/internal/fetcher"
	"clip-archiver/internal/ledger"
	"clip-archiver/internal/settings"
	"clip-archiver/internal/store"
	"clip-archiver/internal/urls"
)

func runDownload(args []string) error {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	file := fs.String("file", "", "read URLs from a text file (free text is scanned for links)")
	useStdin := fs.Bool("stdin", false, "read URLs from stdin")
	outputDir := fs.String("output-dir", "", "download directory (empty = stored setting)")
	baseName := fs.String("base-name", "", "naming base; files become <base>__<n>.<ext>")
	platform := fs.String("platform", "", "platform: tiktok|youtube|instagram|twitter (empty = stored setting)")
	quality := fs.String("quality", "", "quality preset: best|1080p|720p|audio (empty = stored setting)")
	noMetadata := fs.Bool("no-metadata", false, "skip the xlsx metadata ledger")
	audio := fs.Bool("audio", false, "extract audio only")
	noSidecars := fs.Bool("no-sidecars", false, "skip .info.json/thumbnail/description sidecars")
	rawOutput := fs.Bool("raw-output", false, "print raw yt-dlp output lines (verbose)")
	config := fs.String("config", settings.DefaultConfigPath, "settings file path")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := settings.Read(*config)
	if err != nil {
		return err
	}

	list, err := collectURLs(fs.Args(), strings.TrimSpace(*file), *useStdin)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fs.Usage()
		return errors.New("no URLs given: pass URLs as arguments, --file <path>, or --stdin")
	}

	effPlatform := cfg.Platform
	if strings.TrimSpace(*platform) != "" {
		effPlatform = urls.NormalizePlatform(*platform)
		if effPlatform == "" {
			return fmt.Errorf("unknown platform %q", *platform)
		}
	}
	effOutputDir := firstNonEmpty(*outputDir, cfg.OutputDir, settings.DefaultOutputDir)
	effQuality := firstNonEmpty(*quality, cfg.Quality, settings.DefaultQuality)
	effBase := firstNonEmpty(*baseName, cfg.BaseName)
	exportMetadata := cfg.ExportMetadataEnabled() && !*noMetadata
	extractAudio := *audio || cfg.ExtractAudio
	writeSidecars := cfg.WriteSidecars && !*noSidecars

	logFile, err := openBatchLog(effOutputDir)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	f := fetcher.New(effPlatform, fetcher.Options{
		OutputDir:     effOutputDir,
		Quality:       effQuality,
		ExtractAudio:  extractAudio,
		WriteSidecars: writeSidecars,
		LogWriter:     logFile,
		EchoOutput:    *rawOutput,
	})

	var led *ledger.Store
	if exportMetadata {
		led, err = ledger.Open(effOutputDir, ledgerFilename(effBase))
		if err != nil {
			return err
		}
		defer func() { _ = led.Close() }()
		if !*jsonOut {
			fmt.Println(led.Status())
		}
	}

	res, err := batch.Run(batch.RunOptions{
		URLs:           list,
		OutputDir:      effOutputDir,
		BaseName:       effBase,
		ExportMetadata: exportMetadata,
		Fetcher:        f,
		Ledger:         led,
		Quiet:          *jsonOut,
	})
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(res)
	}
	fmt.Println("batch summary")
	fmt.Printf("total: %d\n", res.Total)
	fmt.Printf("valid: %d\n", res.Valid)
	fmt.Printf("invalid: %d\n", res.Invalid)
	fmt.Printf("successful: %d\n", res.Successful)
	fmt.Printf("failed: %d\n", res.Failed)
	if res.LedgerPath != "" {
		fmt.Printf("ledger: %s\n", res.LedgerPath)
	}
	return nil
}

// collectURLs merges URLs from positional arguments, a text file, and
// stdin, preserving first-seen order and dropping duplicates.
func collectURLs(positional []string, file string, useStdin bool) ([]string, error) {
	collected := make([]string, 0, len(positional))
	for _, arg := range positional {
		if strings.TrimSpace(arg) != "" {
			collected = append(collected, strings.TrimSpace(arg))
		}
	}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read URL file: %w", err)
		}
		collected = append(collected, urls.ExtractFromText(string(data))...)
	}

	if useStdin || (len(collected) == 0 && file == "" && !stdinIsTTY()) {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		collected = append(collected, urls.ExtractFromText(string(data))...)
	}

	return urls.Dedupe(collected), nil
}

func openBatchLog(outputDir string) (*os.File, error) {
	logsDir := filepath.Join(outputDir, "logs")
	if err := store.Mkdir(logsDir); err != nil {
		return nil, err
	}
	name := "download-" + time.Now().Format("20060102-150405") + ".log"
	f, err := os.OpenFile(filepath.Join(logsDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open batch log: %w", err)
	}
	return f, nil
}
