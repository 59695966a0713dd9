package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"clip-archiver/internal/fetcher"
	"clip-archiver/internal/settings"
	"clip-archiver/internal/store"
)

type doctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type doctorReport struct {
	OK     bool          `json:"ok"`
	Checks []doctorCheck `json:"checks"`
}

func runDoctor(args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	outputDir := fs.String("output-dir", "", "download directory (empty = stored setting)")
	config := fs.String("config", settings.DefaultConfigPath, "settings file path")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, cfgErr := settings.Read(*config)
	effOutputDir := firstNonEmpty(*outputDir, cfg.OutputDir, settings.DefaultOutputDir)

	res := doctorReport{OK: true}
	add := func(name string, ok bool, message string) {
		res.Checks = append(res.Checks, doctorCheck{Name: name, OK: ok, Message: message})
		if !ok {
			res.OK = false
		}
	}

	deps := fetcher.DependencyStatus()
	if deps.YTDLPFound {
		add("yt-dlp", true, deps.YTDLPPath)
	} else {
		add("yt-dlp", false, "not found on PATH")
	}
	if deps.FFmpegFound {
		add("ffmpeg", true, deps.FFmpegPath)
	} else {
		add("ffmpeg", false, "not found on PATH; format merging and audio extraction need it")
	}

	if cfgErr != nil {
		add("settings", false, cfgErr.Error())
	} else {
		add("settings", true, firstNonEmpty(*config, settings.DefaultConfigPath))
	}

	if err := probeWritable(effOutputDir); err != nil {
		add("output-dir", false, err.Error())
	} else {
		add("output-dir", true, effOutputDir+" is writable")
	}

	if *jsonOut {
		return printJSON(res)
	}
	for _, c := range res.Checks {
		status := "ok"
		if !c.OK {
			status = "fail"
		}
		fmt.Printf("%s: %s (%s)\n", c.Name, status, c.Message)
	}
	if !res.OK {
		return errors.New("doctor checks failed")
	}
	fmt.Println("doctor: all checks passed")
	return nil
}

func probeWritable(dir string) error {
	if err := store.Mkdir(dir); err != nil {
		return err
	}
	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}
