package fetcher

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"clip-archiver/internal/model"
	"clip-archiver/internal/urls"
)

// Generic is the platform-agnostic yt-dlp fetcher.
type Generic struct {
	opts     Options
	platform string
}

func (g *Generic) ValidateURL(url string) bool {
	return urls.Validate(url, g.platform)
}

func (g *Generic) FetchInfo(url string) (model.InfoRecord, error) {
	if strings.TrimSpace(url) == "" {
		return model.InfoRecord{}, fmt.Errorf("video URL is required")
	}

	cmd := exec.Command("yt-dlp", "-J", "--no-playlist", url)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return model.InfoRecord{}, fmt.Errorf("yt-dlp info fetch failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return model.InfoRecord{}, fmt.Errorf("yt-dlp returned empty info output")
	}

	var rec model.InfoRecord
	if err := json.Unmarshal(stdout.Bytes(), &rec); err != nil {
		return model.InfoRecord{}, fmt.Errorf("parse yt-dlp info JSON: %w", err)
	}
	return rec, nil
}

func (g *Generic) Download(url, outputTemplate string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("video URL is required")
	}
	if strings.TrimSpace(g.opts.OutputDir) == "" {
		return fmt.Errorf("output directory is required")
	}
	if strings.TrimSpace(outputTemplate) == "" {
		return fmt.Errorf("output template is required")
	}

	args := []string{
		"--no-playlist",
		"--newline",
		"-P", g.opts.OutputDir,
		"-o", outputTemplate,
		"-f", selectFormat(g.opts.Quality, g.opts.ExtractAudio),
	}
	if g.opts.WriteSidecars {
		args = append(args, "--write-info-json", "--write-thumbnail", "--write-description")
	}
	args = append(args, url)

	return g.run(args)
}

func selectFormat(rawQuality string, extractAudio bool) string {
	if extractAudio {
		return "bestaudio/best"
	}
	quality := strings.ToLower(strings.TrimSpace(rawQuality))
	switch quality {
	case "", "best":
		return "bv*+ba/b"
	case "1080p", "1080", "hd":
		return "bv*[height<=1080]+ba/b[height<=1080]"
	case "720p", "720", "sd", "small":
		return "bv*[height<=720]+ba/b[height<=720]"
	case "audio":
		return "bestaudio/best"
	default:
		return rawQuality
	}
}

func (g *Generic) run(args []string) error {
	cmd := exec.Command("yt-dlp", args...)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("setup stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("setup stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start yt-dlp: %w", err)
	}

	var outBuf strings.Builder
	var errBuf strings.Builder
	var mu sync.Mutex
	var wg sync.WaitGroup

	read := func(stream OutputStream, r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 1024*1024)
		scanner.Split(splitByNewlineOrCR)
		for scanner.Scan() {
			line := scanner.Text()
			mu.Lock()
			appendLimited(&outBuf, &errBuf, stream, line)
			if g.opts.LogWriter != nil {
				_, _ = io.WriteString(g.opts.LogWriter, line+"\n")
			}
			mu.Unlock()

			if g.opts.EchoOutput {
				fmt.Println(line)
			}
			if g.opts.Progress != nil {
				g.opts.Progress(stream, line)
			}
		}
	}

	wg.Add(2)
	go read(StreamStdout, stdoutPipe)
	go read(StreamStderr, stderrPipe)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		mu.Lock()
		defer mu.Unlock()
		return fmt.Errorf("yt-dlp failed: %w\n%s\n%s", err, strings.TrimSpace(errBuf.String()), strings.TrimSpace(outBuf.String()))
	}
	return nil
}

// yt-dlp rewrites progress lines with bare CRs; treat CR like a newline so
// progress callbacks see every update.
func splitByNewlineOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' || data[i] == '\r' {
			if i == 0 {
				return 1, nil, nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func appendLimited(outBuf, errBuf *strings.Builder, stream OutputStream, line string) {
	const maxKeep = 8192
	b := outBuf
	if stream == StreamStderr {
		b = errBuf
	}
	if b.Len() >= maxKeep {
		return
	}
	toWrite := line + "\n"
	remain := maxKeep - b.Len()
	if len(toWrite) > remain {
		toWrite = toWrite[:remain]
	}
	b.WriteString(toWrite)
}
