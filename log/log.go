// Package log writes the diagnostics log and the transcription history.
// Every helper is a no-op until Init succeeds.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	diagName    = "diagnostics_log.txt"
	historyName = "transcribe_log.txt"
	stampLayout = "2006-01-02 15:04:05"
)

var nop = zerolog.Nop()

type sink struct {
	diag    zerolog.Logger
	files   []io.Closer
	mu      sync.Mutex // history writes
	history *os.File
}

var (
	dir     string
	initMu  sync.Mutex
	current atomic.Pointer[sink]
)

// ResolveDir picks the log directory: the -logpath flag, then
// VALLET_LOG_PATH, then the per-OS default.
func ResolveDir(flagPath string) (string, error) {
	for _, p := range []string{flagPath, os.Getenv("VALLET_LOG_PATH")} {
		if p != "" {
			return absPath(p)
		}
	}
	return defaultDir()
}

func absPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) { dir = d }
func Dir() string     { return dir }

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	return nil
}

func openAppend(name string) (*os.File, error) {
	return os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// Init opens both log files under Dir. Calling it again replaces the
// previous sink.
func Init() error {
	initMu.Lock()
	defer initMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}
	diagFile, err := openAppend(diagName)
	if err != nil {
		return err
	}
	history, err := openAppend(historyName)
	if err != nil {
		diagFile.Close()
		return err
	}

	out := zerolog.ConsoleWriter{Out: diagFile, TimeFormat: stampLayout, NoColor: true}
	s := &sink{
		diag:    zerolog.New(out).With().Timestamp().Int("pid", os.Getpid()).Logger(),
		files:   []io.Closer{diagFile, history},
		history: history,
	}
	if old := current.Swap(s); old != nil {
		old.close()
	}
	return nil
}

// Close flushes and closes the files. Safe to call more than once.
func Close() {
	initMu.Lock()
	defer initMu.Unlock()
	if s := current.Swap(nil); s != nil {
		s.close()
	}
}

func (s *sink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.files {
		f.Close()
	}
	s.history = nil
}

// logger returns the active diagnostics logger or a disabled one.
func logger() *zerolog.Logger {
	if s := current.Load(); s != nil {
		return &s.diag
	}
	return &nop
}

func Info(msg string)                  { logger().Info().Msg(msg) }
func Infof(format string, args ...any) { logger().Info().Msgf(format, args...) }
func Warn(msg string)                  { logger().Warn().Msg(msg) }
func Warnf(format string, args ...any) { logger().Warn().Msgf(format, args...) }
func Errorf(format string, args ...any) {
	logger().Error().Msgf(format, args...)
}

// TranscriptionText appends one "time\t[pid]\ttext" line to the history.
func TranscriptionText(text string) {
	s := current.Load()
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.history == nil {
		return
	}
	fmt.Fprintf(s.history, "%s\t[%d]\t%s\n", time.Now().Format(stampLayout), os.Getpid(), text)
}
