package cli

import (
	"flag"
	"fmt"
	"strings"

	"clip-archiver/internal/ledger"
	"clip-archiver/internal/settings"
)

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	outputDir := fs.String("output-dir", "", "directory holding earlier downloads (empty = stored setting)")
	baseName := fs.String("base-name", "", "naming base used for those downloads, if any")
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

	processed, err := led.ImportExisting(effOutputDir, effBase)
	if err != nil {
		return err
	}
	if err := led.Save(); err != nil {
		return err
	}

	rows, err := led.DataRows()
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(map[string]any{
			"ledger_path": led.Path(),
			"processed":   processed,
			"data_rows":   rows,
		})
	}
	fmt.Printf("processed %d sidecar record(s)\n", processed)
	fmt.Printf("ledger: %s (%d rows)\n", led.Path(), rows)
	return nil
}
