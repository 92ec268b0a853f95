package transcriber

import (
	"context"
	"fmt"
	"sync"
)

type FakeTranscriber struct {
	text string
	err  error

	mu    sync.Mutex
	calls [][]byte
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{text: text, err: err}
}

func (f *FakeTranscriber) Name() string { return "fake" }

func (f *FakeTranscriber) Transcribe(_ context.Context, wav []byte) (*Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, wav)
	f.mu.Unlock()
	if f.err != nil {
		return nil, fmt.Errorf("fake transcriber error: %w", f.err)
	}
	if f.text == "" {
		return &Result{}, ErrNoSpeech
	}
	return &Result{Text: f.text}, nil
}

// Calls returns the WAV payloads received so far.
func (f *FakeTranscriber) Calls() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.calls...)
}
