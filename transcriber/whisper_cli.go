package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"vallet/log"
)

const (
	defaultWhisperModel   = "ggml-small.bin"
	defaultWhisperThreads = 8
)

func defaultWhisperBinary() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

// WhisperCLI runs a local whisper.cpp binary on a temporary WAV file.
type WhisperCLI struct {
	binary  string
	model   string
	lang    string
	threads int
}

// NewWhisperCLI resolves cfg.Binary and cfg.Model. Bare names are searched
// next to the executable and in the working directory before PATH.
func NewWhisperCLI(cfg Config) *WhisperCLI {
	binary := cfg.Binary
	if binary == "" {
		binary = defaultWhisperBinary()
	}
	model := cfg.Model
	if model == "" {
		model = defaultWhisperModel
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = defaultWhisperThreads
	}
	lang := cfg.Language
	if lang == "" {
		lang = "auto"
	}
	return &WhisperCLI{
		binary:  locate(binary),
		model:   locate(model),
		lang:    lang,
		threads: threads,
	}
}

func (w *WhisperCLI) Name() string { return "whisper-cli" }

func searchDirs() []string {
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		dirs = append(dirs, dir, filepath.Join(dir, "resources"), filepath.Join(dir, "ai"))
	}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd, filepath.Join(cwd, "resources"), filepath.Join(cwd, "ai"))
	}
	return dirs
}

func locate(name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	for _, dir := range searchDirs() {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return name
}

// Check reports whether the binary and model can be found.
func (w *WhisperCLI) Check() error {
	if _, err := exec.LookPath(w.binary); err != nil {
		return fmt.Errorf("whisper binary not found: %s", w.binary)
	}
	if _, err := os.Stat(w.model); err != nil {
		return fmt.Errorf("whisper model not found: %s", w.model)
	}
	return nil
}

func (w *WhisperCLI) args(wavPath string) []string {
	return []string{
		"-m", w.model,
		"-f", wavPath,
		"-nt",
		"-l", w.lang,
		"-t", strconv.Itoa(w.threads),
		"-bs", "1",
		"-bo", "1",
	}
}

func (w *WhisperCLI) Transcribe(ctx context.Context, wav []byte) (*Result, error) {
	if err := w.Check(); err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "vallet-voice-*.wav")
	if err != nil {
		return nil, fmt.Errorf("creating temp wav: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(wav); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing temp wav: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("writing temp wav: %w", err)
	}

	cmd := exec.CommandContext(ctx, w.binary, w.args(f.Name())...)
	hideConsole(cmd)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("running whisper: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	log.Infof("whisper-cli finished in %v", time.Since(start).Round(time.Millisecond))

	text := strings.TrimSpace(stdout.String())
	r := &Result{Text: text}
	if text == "" || text == "[BLANK_AUDIO]" {
		r.Text = ""
		return r, ErrNoSpeech
	}
	return r, nil
}
