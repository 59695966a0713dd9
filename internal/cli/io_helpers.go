package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"clip-archiver/internal/ledger"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func stdinIsTTY() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// ledgerFilename maps a custom naming base to its ledger file so batches
// with different bases keep separate ledgers.
func ledgerFilename(baseName string) string {
	base := strings.TrimSpace(baseName)
	if base == "" {
		return ledger.DefaultFilename
	}
	return base + "__metadata.xlsx"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func kv(k, v string) string {
	return fmt.Sprintf("%s: %s", k, v)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func boolToYN(v bool) string {
	if v {
		return "y"
	}
	return "n"
}

func parseYN(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "y", "yes", "true", "1":
		return true, true
	case "n", "no", "false", "0", "":
		return false, true
	default:
		return false, false
	}
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
