//go:build linux

package beep

import (
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"

	"vallet/log"
)

var (
	playMu sync.Mutex
	client *pulse.Client
)

// playSamples plays one cue on a shared PulseAudio client. Cues are
// serialized so a stop cue never overlaps the start cue.
func playSamples(samples []int16) {
	if len(samples) == 0 {
		return
	}
	playMu.Lock()
	defer playMu.Unlock()

	if client == nil {
		c, err := pulse.NewClient(pulse.ClientApplicationName("vallet"))
		if err != nil {
			log.Warnf("beep: pulse client: %v", err)
			return
		}
		client = c
	}

	rest := samples
	src := pulse.Int16Reader(func(buf []int16) (int, error) {
		if len(rest) == 0 {
			return 0, pulse.EndOfData
		}
		n := copy(buf, rest)
		rest = rest[n:]
		return n, nil
	})
	stream, err := client.NewPlayback(src,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.05),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			p.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		// the server may have restarted; reconnect on the next cue
		client.Close()
		client = nil
		log.Warnf("beep: playback: %v", err)
		return
	}
	defer stream.Close()
	stream.Start()
	stream.Drain()
	stream.Stop()
}
