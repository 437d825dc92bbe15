package link

import (
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/robolink/internal/monitoring"
	"github.com/banshee-data/robolink/internal/timeutil"
	"github.com/banshee-data/robolink/udp"
)

// ErrTimeout is returned by Poll when the timeout window expired without a
// single correctly sized packet. The caller must treat the output buffer as
// undefined. A silent peer and a peer sending only malformed datagrams are
// not distinguished.
var ErrTimeout = errors.New("link: poll timed out without a valid packet")

// timeoutSlack is the margin applied over the nominal inter-packet interval,
// tolerating minor jitter in the peer's send cadence before giving up.
const timeoutSlack = 1.2

// errLogInterval throttles mid-loop transport error logging so a broken
// socket cannot flood the log from inside the spin loop.
const errLogInterval = time.Second

// Receiver is the transport capability the poller consumes: exactly one
// non-blocking read per call, returning udp.ErrWouldBlock when the receive
// queue is empty. *udp.Receiver implements it; tests use scripted fakes.
type Receiver interface {
	Receive(buf []byte) (int, error)
}

// PollerConfig contains configuration options for a Poller.
type PollerConfig struct {
	// Receiver is the transport endpoint to drain. Required.
	Receiver Receiver
	// Clock overrides the time source. Defaults to the real clock.
	Clock timeutil.Clock
	// Stats receives per-session events. Defaults to a no-op collector.
	Stats Stats
}

// Poller drains a receiver's queue within a rate-derived timeout window and
// keeps only the packet with the highest sequence number.
//
// A Poller is single-threaded by design: it spin-polls the socket for the
// whole window rather than parking in an OS wait, and must not be shared
// across goroutines.
type Poller struct {
	recv  Receiver
	clock timeutil.Clock
	stats Stats

	// scratch is the spare half of the double buffer, reused across sessions.
	scratch []byte

	lastErrLog time.Time
}

// NewPoller creates a Poller with the provided configuration.
func NewPoller(config PollerConfig) *Poller {
	clock := config.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	var stats Stats
	if config.Stats != nil {
		stats = config.Stats
	} else {
		stats = noopStats{}
	}

	return &Poller{
		recv:  config.Receiver,
		clock: clock,
		stats: stats,
	}
}

// Poll reads the receiver until the timeout window closes or the queue is
// drained after at least one valid packet, leaving the freshest packet in
// out.
//
// The window is timeoutSlack times the nominal inter-packet interval for
// rate (in Hz). A datagram is valid only if it is exactly len(out) bytes;
// anything else, including transport errors other than would-block, is
// ignored for that iteration and never aborts the session. Among valid
// packets the highest sequence number wins; ties and older sequences are
// discarded.
//
// Poll returns nil when a packet was captured into out, ErrTimeout when the
// window expired with no valid packet (out is then undefined), or an
// argument error before any socket activity.
func (p *Poller) Poll(out []byte, rate float64) error {
	if p.recv == nil {
		return errors.New("link: poller has no receiver")
	}
	if rate <= 0 {
		return fmt.Errorf("link: target rate must be positive, got %g", rate)
	}
	if len(out) < SequenceSize {
		return fmt.Errorf("link: output buffer of %d bytes cannot hold a sequence header", len(out))
	}

	timeout := time.Duration(timeoutSlack * float64(time.Second) / rate)
	start := p.clock.Now()

	if len(p.scratch) != len(out) {
		p.scratch = make([]byte, len(out))
	}

	// Double buffer: reads land in bufs[read], the freshest packet lives in
	// bufs[1-read] once anyValid is set. Capturing a packet toggles read
	// instead of copying, so a burst of arrivals costs no payload copies.
	bufs := [2][]byte{out, p.scratch}
	read := 1
	var bestSeq uint32
	anyValid := false

	for {
		n, err := p.recv.Receive(bufs[read])
		wouldBlock := errors.Is(err, udp.ErrWouldBlock)

		switch {
		case err == nil && n == len(out):
			seq := Sequence(bufs[read])
			p.stats.AddPacket(n)
			// The first valid packet is captured unconditionally, so a
			// genuine sequence number 0 is not lost to the strict
			// greater-than comparison.
			if !anyValid || seq > bestSeq {
				bestSeq = seq
				read = 1 - read
			} else {
				p.stats.AddStale()
			}
			anyValid = true
		case err == nil:
			// Partial or oversized datagram: not a packet for this link.
			p.stats.AddMalformed(n)
		case wouldBlock:
			// Normal drain signal, handled below.
		default:
			p.stats.AddReceiveError()
			p.logReceiveError(err)
		}

		// Queue drained after at least one good packet: no point spinning
		// out the rest of the window.
		if anyValid && wouldBlock {
			break
		}
		if p.clock.Since(start) >= timeout {
			break
		}
	}

	if !anyValid {
		p.stats.AddTimeout()
		return ErrTimeout
	}

	// The winning buffer is bufs[1-read]. When that is the scratch half,
	// move the packet into the caller's slice; the stale bytes left in
	// scratch are overwritten by the next session.
	if best := bufs[1-read]; &best[0] != &out[0] {
		copy(out, best)
	}
	return nil
}

// logReceiveError reports swallowed transport errors at a throttled cadence.
func (p *Poller) logReceiveError(err error) {
	now := p.clock.Now()
	if now.Sub(p.lastErrLog) < errLogInterval {
		return
	}
	p.lastErrLog = now
	monitoring.Logf("link: receive error during poll (continuing): %v", err)
}
