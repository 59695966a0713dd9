package cli

import (
	"flag"
	"fmt"
	"strings"

	"clip-archiver/internal/ledger"
	"clip-archiver/internal/settings"
)

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	outputDir := fs.String("output-dir", "", "download directory (empty = stored setting)")
	baseName := fs.String("base-name", "", "naming base whose ledger to inspect")
	filename := fs.String("ledger", "", "ledger filename (empty = derived from base name)")
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
	effOutputDir := firstNonEmpty(*outputDir, cfg.OutputDir, settings.DefaultOutputDir)
	effBase := firstNonEmpty(*baseName, cfg.BaseName)
	effFilename := firstNonEmpty(strings.TrimSpace(*filename), ledgerFilename(effBase))

	led, err := ledger.Open(effOutputDir, effFilename)
	if err != nil {
		return err
	}
	defer func() { _ = led.Close() }()

	info, err := led.Describe()
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(map[string]any{
			"status": led.Status(),
			"info":   info,
		})
	}

	fmt.Println(led.Status())
	fmt.Println(kv("file", info.FilePath))
	fmt.Println(kv("exists", yesNo(info.FileExists)))
	fmt.Printf("data_rows: %d\n", info.DataRows)
	fmt.Printf("columns: %d\n", info.TotalColumns)
	return nil
}
