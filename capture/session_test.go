package capture

import (
	"errors"
	"sync"
	"testing"

	"vallet/audio"
	"vallet/encoder"
	"vallet/transport"
)

func newTestSession(t *testing.T, queue int) (*Session, *audio.FakeContext) {
	t.Helper()
	actx := audio.NewFakeContext()
	return NewSession(actx, Options{QueueSize: queue}), actx
}

func TestSessionStartStop(t *testing.T) {
	s, actx := newTestSession(t, 4)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !s.Active() {
		t.Fatal("session should be active after Start")
	}
	fc := actx.Last()
	if fc.Config.SampleRate != encoder.SampleRate || fc.Config.Channels != 1 {
		t.Errorf("capture config = %+v, want 16kHz mono", fc.Config)
	}
	fc.Emit([]float32{0.5, -0.5})
	fc.Emit([]float32{0.5, -0.5})

	clip, ok := s.Stop()
	if !ok {
		t.Fatal("Stop returned false for active session")
	}
	if s.Active() {
		t.Error("session still active after Stop")
	}
	if !fc.Closed() {
		t.Error("device not released by Stop")
	}
	if len(clip.Chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(clip.Chunks))
	}
	want := []int16{16384, -16384, 16384, -16384}
	got := encoder.Concat(clip.Chunks)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSessionDuplicateStart(t *testing.T) {
	s, actx := newTestSession(t, 4)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if n := len(actx.Captures()); n != 1 {
		t.Errorf("opened %d captures, want 1", n)
	}
	s.Stop()
}

func TestSessionStopIdempotent(t *testing.T) {
	s, _ := newTestSession(t, 4)
	if _, ok := s.Stop(); ok {
		t.Error("Stop without Start should return false")
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Stop(); !ok {
		t.Error("first Stop should return true")
	}
	if _, ok := s.Stop(); ok {
		t.Error("second Stop should return false")
	}
}

func TestSessionPermissionDenied(t *testing.T) {
	s, actx := newTestSession(t, 4)
	actx.Deny(true)

	err := s.Start()
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if s.Active() {
		t.Error("session active after denied Start")
	}

	actx.Deny(false)
	if err := s.Start(); err != nil {
		t.Fatalf("Start after grant: %v", err)
	}
	s.Stop()
}

func TestSessionRestartReleasesDevice(t *testing.T) {
	s, actx := newTestSession(t, 4)
	for i := 0; i < 5; i++ {
		if err := s.Start(); err != nil {
			t.Fatal(err)
		}
		if open := actx.Open(); open != 1 {
			t.Fatalf("iteration %d: %d open devices, want 1", i, open)
		}
		s.Stop()
	}
	if open := actx.Open(); open != 0 {
		t.Errorf("%d devices left open", open)
	}
}

func TestSessionSeparatesRecordings(t *testing.T) {
	s, actx := newTestSession(t, 4)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	actx.Last().Emit([]float32{0.1, 0.2, 0.3})
	first, _ := s.Stop()

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	actx.Last().Emit([]float32{0.1})
	second, _ := s.Stop()

	if first.Samples() != 3 || second.Samples() != 1 {
		t.Errorf("samples = %d, %d, want 3, 1", first.Samples(), second.Samples())
	}
	if first.ID == second.ID {
		t.Error("recordings share an ID")
	}
}

func TestSessionConcurrentFrames(t *testing.T) {
	s, actx := newTestSession(t, 1)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	fc := actx.Last()

	const frames = 500
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < frames; i++ {
			fc.Emit(make([]float32, 1+i%7))
		}
	}()
	wg.Wait()

	clip, _ := s.Stop()
	if len(clip.Chunks) != frames {
		t.Fatalf("got %d chunks, want %d", len(clip.Chunks), frames)
	}
	for i, c := range clip.Chunks {
		if len(c) != 1+i%7 {
			t.Fatalf("chunk %d has %d samples, want %d (order lost)", i, len(c), 1+i%7)
		}
	}
}

func TestSessionStopKeepsTail(t *testing.T) {
	s, actx := newTestSession(t, 4)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	fc := actx.Last()
	fc.Emit([]float32{0.5, 0.5, 0.5, 0.5})
	fc.SetTail([]float32{-0.5, -0.5})

	clip, _ := s.Stop()
	if clip.Samples() != 6 {
		t.Fatalf("Samples = %d, want 6 (tail lost)", clip.Samples())
	}
	got := encoder.Concat(clip.Chunks)
	if got[4] != -16384 || got[5] != -16384 {
		t.Errorf("tail samples = %v, want [-16384 -16384]", got[4:])
	}
	if clip.Late != 0 {
		t.Errorf("Late = %d, want 0", clip.Late)
	}
	if fc.Emit([]float32{1}) {
		t.Error("frame delivered after Stop")
	}
}

func TestLateFrameDropped(t *testing.T) {
	r := &recording{
		frames: make(chan []int16, 1),
		done:   make(chan struct{}),
	}
	go r.accumulate()
	r.onFrame([]float32{1})
	r.seal()
	r.onFrame([]float32{1})

	if len(r.chunks) != 1 {
		t.Errorf("got %d chunks, want 1", len(r.chunks))
	}
	if r.late.Load() != 1 {
		t.Errorf("late = %d, want 1", r.late.Load())
	}
}

type fakeTransmitter struct {
	ids    []string
	audios []string
}

func (f *fakeTransmitter) Transmit(id, audio string) {
	f.ids = append(f.ids, id)
	f.audios = append(f.audios, audio)
}

func TestRecorderTransmitsOnce(t *testing.T) {
	s, actx := newTestSession(t, 4)
	tx := &fakeTransmitter{}
	rec := NewRecorder(s, tx)

	if err := rec.Start(); err != nil {
		t.Fatal(err)
	}
	actx.Last().Emit([]float32{0.5, -0.5})
	actx.Last().Emit([]float32{0.5, -0.5})
	rec.Stop()
	rec.Stop()

	if len(tx.audios) != 1 {
		t.Fatalf("got %d transmissions, want 1", len(tx.audios))
	}
	wav, err := transport.Decode(tx.audios[0])
	if err != nil {
		t.Fatal(err)
	}
	info, samples, err := encoder.DecodeWAV(wav)
	if err != nil {
		t.Fatal(err)
	}
	if info.DataSize != 8 {
		t.Errorf("DataSize = %d, want 8", info.DataSize)
	}
	want := []int16{16384, -16384, 16384, -16384}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, samples[i], want[i])
		}
	}
}

func TestRecorderSkipsEmpty(t *testing.T) {
	s, _ := newTestSession(t, 4)
	tx := &fakeTransmitter{}
	rec := NewRecorder(s, tx)

	if err := rec.Start(); err != nil {
		t.Fatal(err)
	}
	rec.Stop()
	if len(tx.audios) != 0 {
		t.Errorf("got %d transmissions for empty recording, want 0", len(tx.audios))
	}
}
