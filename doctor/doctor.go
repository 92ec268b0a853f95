// Package doctor runs the interactive -doctor self check.
package doctor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"vallet/audio"
	"vallet/capture"
	"vallet/clipboard"
	"vallet/config"
	"vallet/encoder"
	"vallet/hotkey"
	"vallet/transcriber"
)

const (
	hotkeyTimeout = 10 * time.Second
	recordFor     = 3 * time.Second
	pasteProbe    = "vallet-doctor-test"
)

type doctor struct {
	cfg config.Config
	in  *bufio.Reader
	out io.Writer
	wav []byte
}

// Run executes the checks in order and returns an exit code
// (0 all passed, 1 any failed). Later checks are skipped after a failure.
func Run(cfg config.Config) int {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "doctor needs an interactive terminal")
		return 1
	}
	resetTerminal()
	exitOnInterrupt()

	d := &doctor{cfg: cfg, in: bufio.NewReader(os.Stdin), out: os.Stdout}
	fmt.Fprintln(d.out, "vallet doctor - interactive system diagnostics")
	fmt.Fprintln(d.out, "==============================================")

	checks := []struct {
		name string
		fn   func() error
	}{
		{"Hotkeys", d.checkHotkeys},
		{"Microphone", d.checkMicrophone},
		{"Transcription", d.checkTranscription},
		{"Clipboard and paste", d.checkClipboard},
	}
	for i, c := range checks {
		fmt.Fprintf(d.out, "\n[%d/%d] %s\n", i+1, len(checks), c.name)
		if err := c.fn(); err != nil {
			fmt.Fprintf(d.out, "  FAIL: %v\n", err)
			fmt.Fprintln(d.out, "\nSome checks failed. See details above.")
			return 1
		}
	}
	fmt.Fprintln(d.out, "\nAll checks passed!")
	return 0
}

func (d *doctor) checkHotkeys() error {
	if info, err := hotkey.Diagnose(); err != nil {
		fmt.Fprintf(d.out, "  warning: %v\n", err)
	} else if info != "" {
		fmt.Fprintf(d.out, "  %s\n", info)
	}

	launcher, err := hotkey.ParseCombo(d.cfg.Hotkeys.Launcher)
	if err != nil {
		return err
	}
	voice, err := hotkey.ParseCombo(d.cfg.Hotkeys.Voice)
	if err != nil {
		return err
	}
	for _, c := range []hotkey.Combo{launcher, voice} {
		fmt.Fprintf(d.out, "  Press %s...\n", c)
		if err := waitForPress(hotkey.New(c), hotkeyTimeout); err != nil {
			return fmt.Errorf("%s: %w", c, err)
		}
		resetTerminal()
		fmt.Fprintf(d.out, "  PASS: %s detected\n", c)
	}
	return nil
}

func waitForPress(hk hotkey.Hotkey, timeout time.Duration) error {
	if err := hk.Register(); err != nil {
		return fmt.Errorf("could not register hotkey: %w", err)
	}
	defer hk.Unregister()

	select {
	case <-hk.Keydown():
	case <-time.After(timeout):
		return errors.New("timeout waiting for hotkey")
	}
	select {
	case <-hk.Keyup():
	case <-time.After(timeout):
	}
	return nil
}

func (d *doctor) checkMicrophone() error {
	actx, err := audio.NewContext()
	if err != nil {
		return fmt.Errorf("cannot connect to audio: %w", err)
	}
	defer actx.Close()

	var dev *audio.DeviceInfo
	if d.cfg.Recording.Device != "" {
		dev, err = audio.FindDevice(actx, d.cfg.Recording.Device)
	} else {
		dev, err = audio.SelectDevice(actx)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "  Using device: %s\n", dev.Name)
	if audio.IsBluetooth(dev.Name) {
		fmt.Fprintln(d.out, "  warning: Bluetooth microphones record at lower quality")
	}

	if !d.confirm("  Press Enter and speak for 3 seconds") {
		return errors.New("cancelled")
	}
	sess := capture.NewSession(actx, capture.Options{Device: dev, FrameSize: d.cfg.Recording.FrameSize})
	clip, err := recordClip(sess, func() {
		fmt.Fprint(d.out, "  Recording")
		for range int(recordFor / (500 * time.Millisecond)) {
			time.Sleep(500 * time.Millisecond)
			fmt.Fprint(d.out, ".")
		}
		fmt.Fprintln(d.out, " done")
	})
	if err != nil {
		return err
	}
	p := peak(clip.Chunks)
	fmt.Fprintf(d.out, "  Captured %d samples (%.1fs), peak level %d\n", clip.Samples(), float64(clip.Samples())/encoder.SampleRate, p)
	if p < 512 {
		return errors.New("input is silent, check the microphone gain")
	}

	d.wav, err = encoder.EncodeWAV(clip.Chunks, encoder.SampleRate)
	if err != nil {
		return err
	}
	fmt.Fprintln(d.out, "  PASS: microphone delivers audio")
	return nil
}

// recordClip holds sess open for as long as wait blocks.
func recordClip(sess *capture.Session, wait func()) (capture.Clip, error) {
	if err := sess.Start(); err != nil {
		return capture.Clip{}, err
	}
	wait()
	clip, _ := sess.Stop()
	if len(clip.Chunks) == 0 {
		return clip, errors.New("no audio captured")
	}
	return clip, nil
}

func peak(chunks [][]int16) int16 {
	var p int16
	for _, c := range chunks {
		for _, s := range c {
			if s < 0 {
				s = -max(s, -32767)
			}
			p = max(p, s)
		}
	}
	return p
}

func (d *doctor) checkTranscription() error {
	tr, err := transcriber.New(d.cfg.TranscriberConfig())
	if err != nil {
		return err
	}
	if w, ok := tr.(*transcriber.WhisperCLI); ok {
		if err := w.Check(); err != nil {
			return err
		}
	}
	return d.transcribe(tr)
}

func (d *doctor) transcribe(tr transcriber.Transcriber) error {
	fmt.Fprintf(d.out, "  Transcribing with %s...\n", tr.Name())
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res, err := tr.Transcribe(ctx, d.wav)
	if errors.Is(err, transcriber.ErrNoSpeech) {
		return errors.New("no speech detected in the recording")
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "\n  Transcribed text: %s\n\n", strings.TrimSpace(res.Text))
	if !d.confirm("Is this correct? [y/n]") {
		return errors.New("transcription not confirmed")
	}
	fmt.Fprintln(d.out, "  PASS: transcription verified by user")
	return nil
}

func (d *doctor) checkClipboard() error {
	probe := fmt.Sprintf("%s-%d", pasteProbe, time.Now().UnixNano())
	if err := clipboard.Copy(probe); err != nil {
		return fmt.Errorf("clipboard write failed: %w", err)
	}
	got, err := clipboard.Read()
	if err != nil {
		return fmt.Errorf("clipboard read failed: %w", err)
	}
	if got != probe {
		return fmt.Errorf("clipboard mismatch: wrote %q, got %q", probe, got)
	}
	fmt.Fprintln(d.out, "  PASS: clipboard write/read verified")

	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("keystroke init: %w", err)
	}
	fmt.Fprintln(d.out, "  Focus a text editor window...")
	for i := 5; i > 0; i-- {
		fmt.Fprintf(d.out, "  %d...\n", i)
		time.Sleep(time.Second)
	}
	if err := clipboard.PasteText(pasteProbe); err != nil {
		return fmt.Errorf("paste failed: %w", err)
	}
	resetTerminal()
	if !d.confirm(fmt.Sprintf("Did the text %q appear? [y/n]", pasteProbe)) {
		return errors.New("paste not confirmed")
	}
	fmt.Fprintln(d.out, "  PASS: paste verified by user")
	return nil
}

// confirm prints prompt and reports whether the answer is empty or yes.
func (d *doctor) confirm(prompt string) bool {
	fmt.Fprintf(d.out, "%s: ", prompt)
	line, err := d.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true
	}
	return false
}
