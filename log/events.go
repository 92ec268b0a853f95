package log

import "time"

// Metrics describes one transcription round trip.
type Metrics struct {
	AudioLengthS float64
	WAVSizeKB    float64
	DNSTimeMs    float64
	TLSTimeMs    float64
	TTFBMs       float64
	TotalTimeMs  float64
}

func TranscriptionMetrics(m Metrics, provider string, connReused bool) {
	conn := "new"
	if connReused {
		conn = "reused"
	}
	logger().Info().
		Str("provider", provider).
		Str("conn", conn).
		Float64("audio_s", m.AudioLengthS).
		Float64("wav_kb", m.WAVSizeKB).
		Float64("dns_ms", m.DNSTimeMs).
		Float64("tls_ms", m.TLSTimeMs).
		Float64("ttfb_ms", m.TTFBMs).
		Float64("total_ms", m.TotalTimeMs).
		Msg("transcription")
}

func RecordingStart(id, device string) {
	logger().Info().Str("recording", id).Str("device", device).Msg("recording_start")
}

func RecordingStop(id string, chunks, samples, late int, elapsed time.Duration) {
	logger().Info().
		Str("recording", id).
		Int("chunks", chunks).
		Int("samples", samples).
		Int("late_frames", late).
		Dur("elapsed", elapsed).
		Msg("recording_stop")
}

func Transmit(id string, wavBytes, encodedBytes int) {
	logger().Info().
		Str("recording", id).
		Int("wav_bytes", wavBytes).
		Int("encoded_bytes", encodedBytes).
		Msg("transmit")
}

func ModeChange(from, to, event string) {
	logger().Info().Str("from", from).Str("to", to).Str("event", event).Msg("mode_change")
}

func SessionStart(provider, host string) {
	logger().Info().Str("provider", provider).Str("host", host).Msg("session_start")
}

func SessionEnd(count int) {
	logger().Info().Int("count", count).Msg("session_end")
}
