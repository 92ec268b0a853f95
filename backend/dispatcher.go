package backend

import (
	"context"
	"errors"
	"sync/atomic"

	"vallet/log"
)

var ErrQueueFull = errors.New("backend queue full")

const DefaultQueueSize = 4

type job struct {
	id    string
	audio string
}

// Dispatcher is the one-way transmit-audio endpoint. Transmit never blocks;
// a single worker feeds the Processor in arrival order.
type Dispatcher struct {
	proc    *Processor
	queue   chan job
	dropped atomic.Int64
}

func NewDispatcher(proc *Processor, size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Dispatcher{proc: proc, queue: make(chan job, size)}
}

func (d *Dispatcher) Transmit(id, audio string) {
	if err := d.TryTransmit(id, audio); err != nil {
		log.Warnf("dropping recording %s: %v", id, err)
	}
}

// TryTransmit is Transmit with the drop reported to the caller.
func (d *Dispatcher) TryTransmit(id, audio string) error {
	select {
	case d.queue <- job{id: id, audio: audio}:
		return nil
	default:
		d.dropped.Add(1)
		return ErrQueueFull
	}
}

func (d *Dispatcher) Dropped() int {
	return int(d.dropped.Load())
}

// Run processes queued recordings until ctx is done. Failures are logged.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case j := <-d.queue:
			if err := d.proc.ProcessAudio(ctx, j.id, j.audio); err != nil {
				log.Errorf("processing failed: %v", err)
			}
		}
	}
}

// Discard empties the queue once Run has returned, logging each recording
// that will not be processed. Capture stopped during shutdown lands here.
func (d *Dispatcher) Discard() int {
	n := 0
	for {
		select {
		case j := <-d.queue:
			log.Warnf("recording %s discarded at shutdown", j.id)
			n++
		default:
			return n
		}
	}
}
