package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"clip-archiver/internal/settings"
)

func runSettings(args []string) error {
	if len(args) == 0 {
		printSettingsUsage()
		return nil
	}
	switch args[0] {
	case "show":
		return runSettingsShow(args[1:])
	case "set":
		return runSettingsSet(args[1:])
	case "help", "-h", "--help":
		printSettingsUsage()
		return nil
	default:
		printSettingsUsage()
		return fmt.Errorf("unknown settings subcommand %q", args[0])
	}
}

func runSettingsShow(args []string) error {
	fs := flag.NewFlagSet("settings show", flag.ContinueOnError)
	config := fs.String("config", settings.DefaultConfigPath, "settings file path")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, created, err := settings.Ensure(strings.TrimSpace(*config))
	if err != nil {
		return err
	}
	if created && !*jsonOut {
		fmt.Println("created default settings file")
	}
	if *jsonOut {
		return printJSON(map[string]any{
			"config_path": firstNonEmpty(strings.TrimSpace(*config), settings.DefaultConfigPath),
			"settings":    cfg,
		})
	}

	fmt.Println(kv("config", firstNonEmpty(strings.TrimSpace(*config), settings.DefaultConfigPath)))
	fmt.Println(kv("output_dir", cfg.OutputDir))
	fmt.Println(kv("platform", cfg.Platform))
	fmt.Println(kv("quality", cfg.Quality))
	if cfg.BaseName == "" {
		fmt.Println("base_name: (none; files keep their titles)")
	} else {
		fmt.Println(kv("base_name", cfg.BaseName))
	}
	fmt.Println(kv("export_metadata", yesNo(cfg.ExportMetadataEnabled())))
	fmt.Println(kv("extract_audio", yesNo(cfg.ExtractAudio)))
	fmt.Println(kv("write_sidecars", yesNo(cfg.WriteSidecars)))
	return nil
}

func runSettingsSet(args []string) error {
	fs := flag.NewFlagSet("settings set", flag.ContinueOnError)
	config := fs.String("config", settings.DefaultConfigPath, "settings file path")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) != 2 {
		printSettingsUsage()
		return errors.New("usage: settings set <key> <value>")
	}

	res, err := settings.Set(strings.TrimSpace(*config), rest[0], rest[1])
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}
	fmt.Printf("updated %s in %s\n", strings.ToLower(strings.TrimSpace(rest[0])), res.ConfigPath)
	return nil
}

func printSettingsUsage() {
	fmt.Println("settings: show/update stored download preferences")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  clip-archiver settings show [--json]")
	fmt.Println("  clip-archiver settings set <key> <value>")
	fmt.Println()
	fmt.Println("Keys:")
	fmt.Println("  output_dir       download directory")
	fmt.Println("  platform         tiktok|youtube|instagram|twitter")
	fmt.Println("  quality          best|1080p|720p|audio")
	fmt.Println("  base_name        naming base for <base>__<n>.<ext> files (empty keeps titles)")
	fmt.Println("  export_metadata  record downloads in the xlsx ledger (true/false)")
	fmt.Println("  extract_audio    audio-only downloads (true/false)")
	fmt.Println("  write_sidecars   write .info.json/thumbnail/description (true/false)")
}
