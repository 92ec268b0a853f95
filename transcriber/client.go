package transcriber

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"
)

// APIError is a non-200 reply from a transcription API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// apiError extracts the message from an OpenAI-style error body, which
// carries either {"error":"..."} or {"error":{"message":"..."}}.
func apiError(status int, body []byte) *APIError {
	var env struct {
		Error json.RawMessage `json:"error"`
	}
	msg := string(body)
	if json.Unmarshal(body, &env) == nil && len(env.Error) > 0 {
		var s string
		var obj struct {
			Message string `json:"message"`
		}
		switch {
		case json.Unmarshal(env.Error, &s) == nil:
			msg = s
		case json.Unmarshal(env.Error, &obj) == nil && obj.Message != "":
			msg = obj.Message
		}
	}
	return &APIError{StatusCode: status, Message: msg}
}

// apiClient is an http.Client with keep-alive tuned for one API host and
// per-request phase timings.
type apiClient struct {
	http    *http.Client
	warmURL string
}

func newAPIClient(warmURL string) *apiClient {
	return &apiClient{
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        4,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
		warmURL: warmURL,
	}
}

type apiResponse struct {
	Body    []byte
	Header  http.Header
	Metrics *NetworkMetrics
}

// timeline records the phase boundaries of one request.
type timeline struct {
	m                             NetworkMetrics
	getConn, dns, tcp, tlsStart   time.Time
	gotConn, headers, sent, first time.Time
}

func (t *timeline) trace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		GetConn: func(string) { t.getConn = time.Now() },
		GotConn: func(info httptrace.GotConnInfo) {
			t.gotConn = time.Now()
			t.m.ConnWait = t.gotConn.Sub(t.getConn)
			t.m.ConnReused = info.Reused
		},
		DNSStart:          func(httptrace.DNSStartInfo) { t.dns = time.Now() },
		DNSDone:           func(httptrace.DNSDoneInfo) { t.m.DNS = time.Since(t.dns) },
		ConnectStart:      func(_, _ string) { t.tcp = time.Now() },
		ConnectDone:       func(_, _ string, _ error) { t.m.TCP = time.Since(t.tcp) },
		TLSHandshakeStart: func() { t.tlsStart = time.Now() },
		TLSHandshakeDone: func(cs tls.ConnectionState, _ error) {
			t.m.TLS = time.Since(t.tlsStart)
			t.m.TLSProtocol = cs.NegotiatedProtocol
		},
		WroteHeaders: func() {
			t.headers = time.Now()
			t.m.ReqHeaders = t.headers.Sub(t.gotConn)
		},
		WroteRequest: func(httptrace.WroteRequestInfo) {
			t.sent = time.Now()
			t.m.ReqBody = t.sent.Sub(t.headers)
		},
		GotFirstResponseByte: func() {
			t.first = time.Now()
			t.m.TTFB = t.first.Sub(t.sent)
		},
	}
}

// Do sends req and reads the whole body. Non-200 replies become *APIError.
func (c *apiClient) Do(req *http.Request) (*apiResponse, error) {
	var tl timeline
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), tl.trace()))
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}
	tl.m.Download = time.Since(tl.first)
	tl.m.Total = time.Since(start)
	return &apiResponse{Body: body, Header: resp.Header, Metrics: &tl.m}, nil
}

// Warm opens a connection to the API host so the first upload skips the
// handshake.
func (c *apiClient) Warm() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.warmURL, nil)
	if err != nil {
		return
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
