package transcriber

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestNetworkMetricsSum(t *testing.T) {
	m := &NetworkMetrics{
		ConnWait:   10 * time.Millisecond,
		DNS:        20 * time.Millisecond,
		TCP:        30 * time.Millisecond,
		TLS:        40 * time.Millisecond,
		ReqHeaders: 5 * time.Millisecond,
		ReqBody:    15 * time.Millisecond,
		TTFB:       50 * time.Millisecond,
		Download:   25 * time.Millisecond,
	}
	got := m.Sum()
	want := 195 * time.Millisecond
	if got != want {
		t.Errorf("Sum() = %v, want %v", got, want)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	h := http.Header{}
	h.Set("X-Rate-Limit", "100")

	if got := firstNonEmpty(h, "X-Missing", "X-Rate-Limit"); got != "100" {
		t.Errorf("got %q, want %q", got, "100")
	}
	if got := firstNonEmpty(h, "X-A", "X-B"); got != "?" {
		t.Errorf("got %q, want %q", got, "?")
	}
}

type captured struct {
	auth   string
	fields map[string]string
	file   []byte
}

func newAPIServer(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{fields: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.auth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		for k, v := range r.MultipartForm.Value {
			c.fields[k] = v[0]
		}
		if f, _, err := r.FormFile("file"); err == nil {
			c.file, _ = io.ReadAll(f)
			f.Close()
		}
		w.Header().Set("x-ratelimit-remaining-requests", "9")
		w.Header().Set("x-ratelimit-limit-requests", "10")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func TestGroqTranscribe(t *testing.T) {
	srv, c := newAPIServer(t, http.StatusOK, `{"text":" hola mundo","duration":1.5,"segments":[{"text":"hola","no_speech_prob":0.1}]}`)
	g := NewGroq("secret", "es")
	g.apiURL = srv.URL

	wav := []byte("RIFF....WAVE")
	r, err := g.Transcribe(context.Background(), wav)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if r.Text != " hola mundo" || r.Duration != 1.5 {
		t.Errorf("result = %+v", r)
	}
	if r.RateLimit != "9/10" {
		t.Errorf("RateLimit = %q, want 9/10", r.RateLimit)
	}
	if c.auth != "Bearer secret" {
		t.Errorf("auth = %q", c.auth)
	}
	if c.fields["model"] != "whisper-large-v3-turbo" || c.fields["language"] != "es" {
		t.Errorf("fields = %v", c.fields)
	}
	if string(c.file) != string(wav) {
		t.Errorf("uploaded file = %q", c.file)
	}
}

func TestGroqNoSpeech(t *testing.T) {
	srv, _ := newAPIServer(t, http.StatusOK, `{"text":"you","segments":[{"text":"you","no_speech_prob":0.97}]}`)
	g := NewGroq("k", "auto")
	g.apiURL = srv.URL

	_, err := g.Transcribe(context.Background(), nil)
	if !errors.Is(err, ErrNoSpeech) {
		t.Errorf("err = %v, want ErrNoSpeech", err)
	}
}

func TestOpenAIAutoLanguageOmitted(t *testing.T) {
	srv, c := newAPIServer(t, http.StatusOK, `{"text":"hello"}`)
	o := NewOpenAI("k", "auto")
	o.apiURL = srv.URL

	r, err := o.Transcribe(context.Background(), []byte("wav"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Text != "hello" {
		t.Errorf("Text = %q", r.Text)
	}
	if _, ok := c.fields["language"]; ok {
		t.Error("language sent for auto detection")
	}
	if c.fields["model"] != "gpt-4o-transcribe" {
		t.Errorf("model = %q", c.fields["model"])
	}
}

func TestAPIError(t *testing.T) {
	srv, _ := newAPIServer(t, http.StatusUnauthorized, `{"error":"bad key"}`)
	o := NewOpenAI("k", "")
	o.apiURL = srv.URL

	_, err := o.Transcribe(context.Background(), []byte("wav"))
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("err = %v, want API error 401", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "bad key" {
		t.Errorf("err = %#v", err)
	}
}

func TestAPIErrorMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"error":"bad key"}`, "bad key"},
		{`{"error":{"message":"rate limited","type":"tokens"}}`, "rate limited"},
		{`upstream timeout`, "upstream timeout"},
		{`{"detail":"x"}`, `{"detail":"x"}`},
	}
	for _, tt := range tests {
		if got := apiError(502, []byte(tt.body)).Message; got != tt.want {
			t.Errorf("apiError(%s) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestNewSelectsProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		groq     string
		openai   string
		want     string
		wantErr  bool
	}{
		{"auto groq", "auto", "g", "o", "groq", false},
		{"auto openai", "", "", "o", "openai", false},
		{"auto local", "auto", "", "", "whisper-cli", false},
		{"explicit local", "whisper-cli", "g", "", "whisper-cli", false},
		{"groq without key", "groq", "", "", "", true},
		{"unknown", "deepspeech", "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GROQ_API_KEY", tt.groq)
			t.Setenv("OPENAI_API_KEY", tt.openai)
			tr, err := New(Config{Provider: tt.provider})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tr.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", tr.Name(), tt.want)
			}
		})
	}
}

func TestWhisperCLIArgs(t *testing.T) {
	w := NewWhisperCLI(Config{Binary: "/opt/whisper/whisper-cli", Model: "/opt/models/ggml-small.bin"})
	got := strings.Join(w.args("/tmp/a.wav"), " ")
	want := "-m /opt/models/ggml-small.bin -f /tmp/a.wav -nt -l auto -t 8 -bs 1 -bo 1"
	if got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "whisper-cli")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWhisperCLITranscribe(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a unix shell")
	}
	dir := t.TempDir()
	model := filepath.Join(dir, "model.bin")
	if err := os.WriteFile(model, []byte("ggml"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		script  string
		want    string
		wantErr error
	}{
		{"text", "echo '  hola desde whisper  '\n", "hola desde whisper", nil},
		{"blank", "echo '[BLANK_AUDIO]'\n", "", ErrNoSpeech},
		{"empty", "exit 0\n", "", ErrNoSpeech},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin := writeScript(t, t.TempDir(), tt.script)
			w := NewWhisperCLI(Config{Binary: bin, Model: model})
			r, err := w.Transcribe(context.Background(), []byte("RIFF"))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if r.Text != tt.want {
				t.Errorf("Text = %q, want %q", r.Text, tt.want)
			}
		})
	}
}

func TestWhisperCLIMissingModel(t *testing.T) {
	w := NewWhisperCLI(Config{Binary: "/nonexistent/whisper-cli", Model: "/nonexistent/model.bin"})
	if err := w.Check(); err == nil {
		t.Error("expected Check to fail")
	}
	if _, err := w.Transcribe(context.Background(), nil); err == nil {
		t.Error("expected Transcribe to fail")
	}
}

func TestFakeTranscriber(t *testing.T) {
	f := NewFake("hi", nil)
	r, err := f.Transcribe(context.Background(), []byte{1})
	if err != nil || r.Text != "hi" {
		t.Errorf("got %+v, %v", r, err)
	}
	if len(f.Calls()) != 1 {
		t.Errorf("calls = %d", len(f.Calls()))
	}
	if _, err := NewFake("", nil).Transcribe(context.Background(), nil); !errors.Is(err, ErrNoSpeech) {
		t.Errorf("err = %v, want ErrNoSpeech", err)
	}
}
