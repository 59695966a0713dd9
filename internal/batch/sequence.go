package batch

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// TitleTemplate is the yt-dlp output template used when custom naming is
// not configured.
const TitleTemplate = "%(title)s.%(ext)s"

// Sequence allocates the numeric suffixes for custom-named downloads. It is
// an explicit value owned by one batch run: nothing else can advance the
// counter behind the run's back. Not safe for concurrent use, matching the
// sequential batch model.
type Sequence struct {
	OutputDir string
	BaseName  string
	Next      int
}

// ResetSequence scans outputDir for files named {base}__{N}.* and starts
// the sequence at max(N)+1, or 1 when nothing matches. Malformed suffixes
// are skipped and a missing directory counts as empty, so restarts resume
// numbering instead of overwriting earlier files.
func ResetSequence(outputDir, baseName string) Sequence {
	seq := Sequence{OutputDir: outputDir, BaseName: strings.TrimSpace(baseName), Next: 1}
	if seq.BaseName == "" {
		return seq
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return seq
	}

	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(seq.BaseName) + `__(\d+)\.`)
	maxFound := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxFound {
			maxFound = n
		}
	}
	seq.Next = maxFound + 1
	return seq
}

// Allocate returns the yt-dlp output template for the next download and the
// assigned index, then advances the counter. Without a base name it returns
// the title template and consumes nothing (index 0).
func (s *Sequence) Allocate() (template string, index int) {
	if s.BaseName == "" {
		return TitleTemplate, 0
	}
	index = s.Next
	s.Next++
	return fmt.Sprintf("%s__%d.%%(ext)s", s.BaseName, index), index
}
