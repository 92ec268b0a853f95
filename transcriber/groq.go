package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"vallet/log"
)

const noSpeechThreshold = 0.9

type Groq struct {
	baseTranscriber
	apiKey string
}

func NewGroq(apiKey, lang string) *Groq {
	apiURL := "https://api.groq.com/openai/v1/audio/transcriptions"
	return &Groq{
		baseTranscriber: baseTranscriber{
			client: newAPIClient(apiURL),
			apiURL: apiURL,
			lang:   lang,
		},
		apiKey: apiKey,
	}
}

func (g *Groq) Name() string { return "groq" }

type groqResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Text         string  `json:"text"`
		NoSpeechProb float64 `json:"no_speech_prob"`
	} `json:"segments"`
}

func (g *Groq) Transcribe(ctx context.Context, wav []byte) (*Result, error) {
	fields := map[string]string{
		"model":           "whisper-large-v3-turbo",
		"response_format": "verbose_json",
	}
	if lang := g.language(); lang != "" {
		fields["language"] = lang
	}
	resp, err := upload(ctx, g.Name(), g.client, g.apiURL, g.apiKey, wav, fields)
	if err != nil {
		return nil, fmt.Errorf("groq: %w", err)
	}

	var gResp groqResponse
	if err := json.Unmarshal(resp.Body, &gResp); err != nil {
		return nil, fmt.Errorf("groq response parse error: %w", err)
	}

	var noSpeechProb float64
	for _, seg := range gResp.Segments {
		noSpeechProb = max(noSpeechProb, seg.NoSpeechProb)
	}

	remaining := firstNonEmpty(resp.Header, "x-ratelimit-remaining-requests")
	limit := firstNonEmpty(resp.Header, "x-ratelimit-limit-requests")

	r := &Result{
		Text:         gResp.Text,
		Metrics:      resp.Metrics,
		RateLimit:    remaining + "/" + limit,
		NoSpeechProb: noSpeechProb,
		Duration:     gResp.Duration,
	}
	if noSpeechProb > noSpeechThreshold {
		return r, ErrNoSpeech
	}
	return r, nil
}

// upload posts wav as a multipart form with bearer auth and returns the
// response when the status is 200. The request timings go to the
// diagnostics log.
func upload(ctx context.Context, provider string, client *apiClient, url, apiKey string, wav []byte, fields map[string]string) (*apiResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(wav); err != nil {
		return nil, err
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	m := resp.Metrics
	log.TranscriptionMetrics(log.Metrics{
		AudioLengthS: float64(max(len(wav)-44, 0)) / 32000,
		WAVSizeKB:    float64(len(wav)) / 1024,
		DNSTimeMs:    float64(m.DNS.Microseconds()) / 1000,
		TLSTimeMs:    float64(m.TLS.Microseconds()) / 1000,
		TTFBMs:       float64(m.TTFB.Microseconds()) / 1000,
		TotalTimeMs:  float64(m.Total.Microseconds()) / 1000,
	}, provider, m.ConnReused)
	return resp, nil
}
