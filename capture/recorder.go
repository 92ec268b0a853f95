package capture

import (
	"vallet/encoder"
	"vallet/log"
	"vallet/transport"
)

// Transmitter delivers an encoded recording. Implementations must not block.
type Transmitter interface {
	Transmit(id, audio string)
}

// Recorder pairs a Session with the encode-and-transmit step that follows
// every stop.
type Recorder struct {
	session    *Session
	tx         Transmitter
	sampleRate uint32
}

func NewRecorder(session *Session, tx Transmitter) *Recorder {
	return &Recorder{session: session, tx: tx, sampleRate: session.opts.SampleRate}
}

func (r *Recorder) Start() error {
	return r.session.Start()
}

func (r *Recorder) Active() bool {
	return r.session.Active()
}

// Stop ends the recording and transmits it as a base64 WAV. Nothing is sent
// when no recording was active or no frame was captured.
func (r *Recorder) Stop() {
	clip, ok := r.session.Stop()
	if !ok {
		return
	}
	if len(clip.Chunks) == 0 {
		log.Info("recording empty, nothing to transmit")
		return
	}
	wav, err := encoder.EncodeWAV(clip.Chunks, r.sampleRate)
	if err != nil {
		log.Errorf("encoding recording %s: %v", clip.ID, err)
		return
	}
	encoded := transport.Encode(wav)
	log.Transmit(clip.ID.String(), len(wav), len(encoded))
	r.tx.Transmit(clip.ID.String(), encoded)
}
