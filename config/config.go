// Package config loads the YAML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"vallet/hotkey"
	"vallet/transcriber"
)

var ErrInvalid = errors.New("invalid configuration")

type Hotkeys struct {
	Launcher      string        `yaml:"launcher"`
	Voice         string        `yaml:"voice"`
	HoldThreshold time.Duration `yaml:"hold_threshold"`
}

type Recording struct {
	ResetDelay time.Duration `yaml:"reset_delay"`
	Device     string        `yaml:"device"`
	Queue      int           `yaml:"queue"`
	FrameSize  uint32        `yaml:"frame_size"`
}

type Transcriber struct {
	Provider string `yaml:"provider"`
	Language string `yaml:"language"`
	Binary   string `yaml:"binary"`
	Model    string `yaml:"model"`
	Threads  int    `yaml:"threads"`
}

type Output struct {
	Paste  bool `yaml:"paste"`
	Sounds bool `yaml:"sounds"`
}

type Archive struct {
	Dir string `yaml:"dir"`
}

type UI struct {
	Host string `yaml:"host"`
	Tray bool   `yaml:"tray"`
}

type Config struct {
	Hotkeys     Hotkeys     `yaml:"hotkeys"`
	Recording   Recording   `yaml:"recording"`
	Transcriber Transcriber `yaml:"transcriber"`
	Output      Output      `yaml:"output"`
	Archive     Archive     `yaml:"archive"`
	UI          UI          `yaml:"ui"`
}

func Default() Config {
	return Config{
		Hotkeys: Hotkeys{
			Launcher:      "ctrl+shift+space",
			Voice:         "ctrl+alt+space",
			HoldThreshold: 300 * time.Millisecond,
		},
		Recording: Recording{
			ResetDelay: 1500 * time.Millisecond,
			Queue:      64,
			FrameSize:  4096,
		},
		Transcriber: Transcriber{
			Provider: "auto",
			Language: "auto",
			Threads:  8,
		},
		Output: Output{Paste: true, Sounds: true},
		UI:     UI{Host: "tui"},
	}
}

// DefaultPath is <UserConfigDir>/vallet/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "vallet", "config.yaml"), nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (c Config) TranscriberConfig() transcriber.Config {
	return transcriber.Config{
		Provider: c.Transcriber.Provider,
		Language: c.Transcriber.Language,
		Binary:   c.Transcriber.Binary,
		Model:    c.Transcriber.Model,
		Threads:  c.Transcriber.Threads,
	}
}

func (c Config) Validate() error {
	if _, err := hotkey.ParseCombo(c.Hotkeys.Launcher); err != nil {
		return fmt.Errorf("%w: hotkeys.launcher: %v", ErrInvalid, err)
	}
	if _, err := hotkey.ParseCombo(c.Hotkeys.Voice); err != nil {
		return fmt.Errorf("%w: hotkeys.voice: %v", ErrInvalid, err)
	}
	if c.Hotkeys.Launcher == c.Hotkeys.Voice {
		return fmt.Errorf("%w: launcher and voice hotkeys are the same", ErrInvalid)
	}
	if c.Hotkeys.HoldThreshold < 0 {
		return fmt.Errorf("%w: hotkeys.hold_threshold must not be negative", ErrInvalid)
	}
	if c.Recording.ResetDelay < 0 {
		return fmt.Errorf("%w: recording.reset_delay must not be negative", ErrInvalid)
	}
	if c.Recording.Queue <= 0 {
		return fmt.Errorf("%w: recording.queue must be positive", ErrInvalid)
	}
	switch c.Transcriber.Provider {
	case "auto", "whisper-cli", "groq", "openai":
	default:
		return fmt.Errorf("%w: unknown transcriber.provider %q", ErrInvalid, c.Transcriber.Provider)
	}
	switch c.UI.Host {
	case "tui", "headless", "gui":
	default:
		return fmt.Errorf("%w: unknown ui.host %q", ErrInvalid, c.UI.Host)
	}
	return nil
}
