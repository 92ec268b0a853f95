// Package backend receives transmitted recordings and turns them into text
// at the cursor.
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"vallet/beep"
	"vallet/encoder"
	"vallet/log"
	"vallet/transcriber"
	"vallet/transport"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

type Options struct {
	// Paste delivers the transcription. Nil leaves the text in the log only.
	Paste func(text string) error
	// ArchiveDir keeps a FLAC copy of every recording when set.
	ArchiveDir string
	// OnResult is called after each successful transcription.
	OnResult func(id, text string)
}

type Processor struct {
	tr    transcriber.Transcriber
	opts  Options
	count atomic.Int64
}

func NewProcessor(tr transcriber.Transcriber, opts Options) *Processor {
	return &Processor{tr: tr, opts: opts}
}

// Count is the number of recordings transcribed to non-empty text.
func (p *Processor) Count() int {
	return int(p.count.Load())
}

// ProcessAudio handles one transmit-audio call. ErrNoSpeech is not an error
// at this level: it is logged and nothing is pasted.
func (p *Processor) ProcessAudio(ctx context.Context, id, encoded string) error {
	wav, err := transport.Decode(encoded)
	if err != nil {
		beep.PlayError()
		return fmt.Errorf("recording %s: %w", id, err)
	}
	info, samples, err := encoder.DecodeWAV(wav)
	if err != nil {
		beep.PlayError()
		return fmt.Errorf("recording %s: %w", id, err)
	}
	if info.Channels != encoder.Channels || info.BitsPerSample != encoder.BitsPerSample {
		beep.PlayError()
		return fmt.Errorf("recording %s: %w: %d channels, %d bits", id, ErrUnsupportedFormat, info.Channels, info.BitsPerSample)
	}

	if p.opts.ArchiveDir != "" {
		if path, err := p.archive(id, samples, info.SampleRate); err != nil {
			log.Warnf("archive failed: %v", err)
		} else {
			log.Infof("archived %s (%.1fs)", path, info.Duration())
		}
	}

	start := time.Now()
	res, err := p.tr.Transcribe(ctx, wav)
	if errors.Is(err, transcriber.ErrNoSpeech) {
		log.Infof("recording %s: no speech", id)
		return nil
	}
	if err != nil {
		beep.PlayError()
		return fmt.Errorf("recording %s: transcribing with %s: %w", id, p.tr.Name(), err)
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		log.Infof("recording %s: no speech", id)
		return nil
	}
	log.TranscriptionText(text)
	log.Infof("recording %s: %d chars in %s", id, len(text), time.Since(start).Round(time.Millisecond))
	p.count.Add(1)

	if p.opts.Paste != nil {
		if err := p.opts.Paste(text); err != nil {
			beep.PlayError()
			return fmt.Errorf("recording %s: pasting: %w", id, err)
		}
	}
	beep.PlayEnd()
	if p.opts.OnResult != nil {
		p.opts.OnResult(id, text)
	}
	return nil
}

func (p *Processor) archive(id string, samples []int16, sampleRate uint32) (string, error) {
	data, err := encoder.EncodeFLAC(samples, sampleRate)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(p.opts.ArchiveDir, 0755); err != nil {
		return "", fmt.Errorf("creating archive directory: %w", err)
	}
	path := filepath.Join(p.opts.ArchiveDir, id+".flac")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
