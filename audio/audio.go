package audio

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPermissionDenied is returned when the platform refuses to open a
// microphone stream.
var ErrPermissionDenied = errors.New("microphone access denied")

// denied marks a backend failure to acquire the microphone, keeping the
// backend error in the chain.
func denied(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, op, err)
}

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"bluetooth", " bt ", " bt)", " bt]",
}

func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// FrameCallback receives one batch of normalized mono samples. The slice is
// only valid for the duration of the call.
type FrameCallback func(frame []float32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
	FrameSize  uint32 // samples per callback, 0 lets the backend choose
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb FrameCallback)
	ClearCallback()
}
