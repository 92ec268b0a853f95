//go:build linux

package audio

import "testing"

func TestPulseWriteFrames(t *testing.T) {
	tests := []struct {
		name      string
		frameSize uint32
		in        [][]float32
		want      []int // frame lengths delivered, stop included
	}{
		{"unframed", 0, [][]float32{{0.1, 0.1, 0.1}, {0.1}}, []int{3, 1}},
		{"exact frames", 2, [][]float32{{0.1, 0.1, 0.1, 0.1}}, []int{2, 2}},
		{"tail flushed on stop", 4, [][]float32{{0.1, 0.1, 0.1}, {0.1, 0.1, 0.1}}, []int{4, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &pulseCapture{config: CaptureConfig{SampleRate: 16000, Channels: 1, FrameSize: tt.frameSize}}
			var got []int
			samples := 0
			c.SetCallback(func(frame []float32) {
				got = append(got, len(frame))
				samples += len(frame)
			})

			fed := 0
			for _, in := range tt.in {
				if n, err := c.write(in); err != nil || n != len(in) {
					t.Fatalf("write = %d, %v", n, err)
				}
				fed += len(in)
			}
			c.Stop()
			c.Close()

			if samples != fed {
				t.Errorf("delivered %d samples, captured %d", samples, fed)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("frames = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("frames = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestPulseStopWithoutCallback(t *testing.T) {
	c := &pulseCapture{config: CaptureConfig{FrameSize: 4}}
	c.SetCallback(func([]float32) {})
	c.write([]float32{0.1, 0.1})
	c.ClearCallback()
	c.Stop()
	if len(c.buf) != 0 {
		t.Errorf("%d samples left buffered after stop", len(c.buf))
	}
}
