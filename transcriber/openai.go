package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type OpenAI struct {
	baseTranscriber
	apiKey string
}

func NewOpenAI(apiKey, lang string) *OpenAI {
	apiURL := "https://api.openai.com/v1/audio/transcriptions"
	return &OpenAI{
		baseTranscriber: baseTranscriber{
			client: newAPIClient(apiURL),
			apiURL: apiURL,
			lang:   lang,
		},
		apiKey: apiKey,
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Transcribe(ctx context.Context, wav []byte) (*Result, error) {
	fields := map[string]string{
		"model":           "gpt-4o-transcribe",
		"response_format": "json",
	}
	if lang := o.language(); lang != "" {
		fields["language"] = lang
	}
	resp, err := upload(ctx, o.Name(), o.client, o.apiURL, o.apiKey, wav, fields)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	var oResp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(resp.Body, &oResp); err != nil {
		return nil, fmt.Errorf("openai response parse error: %w", err)
	}

	remaining := firstNonEmpty(resp.Header, "x-ratelimit-remaining-requests")
	limit := firstNonEmpty(resp.Header, "x-ratelimit-limit-requests")

	r := &Result{
		Text:      oResp.Text,
		Metrics:   resp.Metrics,
		RateLimit: remaining + "/" + limit,
	}
	if strings.TrimSpace(r.Text) == "" {
		return r, ErrNoSpeech
	}
	return r, nil
}
