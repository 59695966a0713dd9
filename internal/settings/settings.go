// Package settings persists the user's download preferences as a small
// JSON document. Missing files yield defaults; every load normalizes the
// document so callers never see out-of-range values.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clip-archiver/internal/store"
	"clip-archiver/internal/urls"
)

const (
	settingsSchemaVersion = 1

	DefaultConfigPath = "config/settings.json"
	DefaultOutputDir  = "downloads"
	DefaultPlatform   = urls.PlatformTikTok
	DefaultQuality    = "best"
)

type Settings struct {
	SchemaVersion  int    `json:"schema_version"`
	UpdatedAt      string `json:"updated_at,omitempty"`
	OutputDir      string `json:"output_dir,omitempty"`
	Platform       string `json:"platform,omitempty"`
	Quality        string `json:"quality,omitempty"`
	BaseName       string `json:"base_name,omitempty"`
	ExportMetadata *bool  `json:"export_metadata,omitempty"`
	ExtractAudio   bool   `json:"extract_audio,omitempty"`
	WriteSidecars  bool   `json:"write_sidecars,omitempty"`
}

type UpdateOptions struct {
	ConfigPath string
	Settings   Settings
}

type UpdateResult struct {
	ConfigPath string   `json:"config_path"`
	Settings   Settings `json:"settings"`
}

func Defaults() Settings {
	return Settings{
		SchemaVersion:  settingsSchemaVersion,
		OutputDir:      DefaultOutputDir,
		Platform:       DefaultPlatform,
		Quality:        DefaultQuality,
		ExportMetadata: boolPtr(true),
		WriteSidecars:  true,
	}
}

func normalize(raw Settings) Settings {
	norm := raw
	norm.SchemaVersion = settingsSchemaVersion
	norm.OutputDir = strings.TrimSpace(norm.OutputDir)
	if norm.OutputDir == "" {
		norm.OutputDir = DefaultOutputDir
	}
	norm.Platform = urls.NormalizePlatform(norm.Platform)
	if norm.Platform == "" {
		norm.Platform = DefaultPlatform
	}
	norm.Quality = strings.ToLower(strings.TrimSpace(norm.Quality))
	if norm.Quality == "" {
		norm.Quality = DefaultQuality
	}
	norm.BaseName = strings.TrimSpace(norm.BaseName)
	if norm.ExportMetadata == nil {
		norm.ExportMetadata = boolPtr(true)
	}
	return norm
}

func normalizeConfigPath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return DefaultConfigPath
	}
	return p
}

// Read loads settings without creating the file; a missing file returns
// the defaults.
func Read(configPath string) (Settings, error) {
	path := normalizeConfigPath(configPath)
	var s Settings
	if err := store.ReadJSON(path, &s); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Settings{}, err
	}
	return normalize(s), nil
}

// Ensure loads settings, writing the default document first when none
// exists. The boolean reports whether the file was created.
func Ensure(configPath string) (Settings, bool, error) {
	path := normalizeConfigPath(configPath)
	var s Settings
	err := store.ReadJSON(path, &s)
	if err == nil {
		return normalize(s), false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return Settings{}, false, err
	}

	s = Defaults()
	s.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := save(path, s); err != nil {
		return Settings{}, false, err
	}
	return s, true, nil
}

func Update(opts UpdateOptions) (UpdateResult, error) {
	path := normalizeConfigPath(opts.ConfigPath)
	s := normalize(opts.Settings)
	s.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := save(path, s); err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{ConfigPath: path, Settings: s}, nil
}

// Set applies a single key=value assignment on top of the stored
// settings and persists the result.
func Set(configPath, key, value string) (UpdateResult, error) {
	current, err := Read(configPath)
	if err != nil {
		return UpdateResult{}, err
	}
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "output_dir":
		current.OutputDir = value
	case "platform":
		if urls.NormalizePlatform(value) == "" && value != "" {
			return UpdateResult{}, fmt.Errorf("unknown platform %q", value)
		}
		current.Platform = value
	case "quality":
		current.Quality = value
	case "base_name":
		current.BaseName = value
	case "export_metadata":
		b, err := parseBool(value)
		if err != nil {
			return UpdateResult{}, fmt.Errorf("export_metadata: %w", err)
		}
		current.ExportMetadata = boolPtr(b)
	case "extract_audio":
		b, err := parseBool(value)
		if err != nil {
			return UpdateResult{}, fmt.Errorf("extract_audio: %w", err)
		}
		current.ExtractAudio = b
	case "write_sidecars":
		b, err := parseBool(value)
		if err != nil {
			return UpdateResult{}, fmt.Errorf("write_sidecars: %w", err)
		}
		current.WriteSidecars = b
	default:
		return UpdateResult{}, fmt.Errorf("unknown setting %q", key)
	}
	return Update(UpdateOptions{ConfigPath: configPath, Settings: current})
}

func (s Settings) ExportMetadataEnabled() bool {
	if s.ExportMetadata == nil {
		return true
	}
	return *s.ExportMetadata
}

func save(path string, s Settings) error {
	if err := store.Mkdir(filepath.Dir(path)); err != nil {
		return err
	}
	return store.WriteJSON(path, s)
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected true or false, got %q", raw)
}

func boolPtr(v bool) *bool {
	b := v
	return &b
}
