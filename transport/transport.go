// Package transport turns WAV payloads into the text form handed to the
// backend and back.
package transport

import (
	"encoding/base64"
	"fmt"
)

// Encode returns the standard padded base64 form of payload.
func Encode(payload []byte) string {
	return base64.StdEncoding.EncodeToString(payload)
}

func Decode(text string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("decoding audio payload: %w", err)
	}
	return data, nil
}
