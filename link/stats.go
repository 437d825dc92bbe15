package link

import (
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/robolink/internal/monitoring"
)

// Stats receives per-poll-session events from the Poller. Implementations
// must be cheap: the poller calls them from inside its spin loop.
type Stats interface {
	// AddPacket records a correctly sized packet.
	AddPacket(bytes int)
	// AddStale records a valid packet discarded for carrying an older sequence.
	AddStale()
	// AddMalformed records a datagram whose size did not match the packet size.
	AddMalformed(bytes int)
	// AddReceiveError records a transport error other than would-block.
	AddReceiveError()
	// AddTimeout records a poll session that expired without a valid packet.
	AddTimeout()
}

// noopStats is a Stats implementation that does nothing. It is used as a
// safe default when no stats collector is provided.
type noopStats struct{}

func (noopStats) AddPacket(bytes int)    {}
func (noopStats) AddStale()              {}
func (noopStats) AddMalformed(bytes int) {}
func (noopStats) AddReceiveError()       {}
func (noopStats) AddTimeout()            {}

// LinkStats tracks link statistics with thread-safe operations.
type LinkStats struct {
	mu             sync.Mutex
	packetCount    int64
	byteCount      int64
	staleCount     int64
	malformedCount int64
	errorCount     int64
	timeoutCount   int64
	lastReset      time.Time
}

// NewLinkStats creates a new LinkStats instance.
func NewLinkStats() *LinkStats {
	return &LinkStats{lastReset: time.Now()}
}

// AddPacket increments packet count and byte count.
func (ls *LinkStats) AddPacket(bytes int) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.packetCount++
	ls.byteCount += int64(bytes)
}

// AddStale increments the stale packet count.
func (ls *LinkStats) AddStale() {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.staleCount++
}

// AddMalformed increments the malformed datagram count.
func (ls *LinkStats) AddMalformed(bytes int) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.malformedCount++
}

// AddReceiveError increments the transport error count.
func (ls *LinkStats) AddReceiveError() {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.errorCount++
}

// AddTimeout increments the poll timeout count.
func (ls *LinkStats) AddTimeout() {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.timeoutCount++
}

// GetAndReset returns current counters and resets them.
func (ls *LinkStats) GetAndReset() (packets, bytes, stale, malformed, errs, timeouts int64, duration time.Duration) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	now := time.Now()
	duration = now.Sub(ls.lastReset)
	packets = ls.packetCount
	bytes = ls.byteCount
	stale = ls.staleCount
	malformed = ls.malformedCount
	errs = ls.errorCount
	timeouts = ls.timeoutCount

	ls.packetCount = 0
	ls.byteCount = 0
	ls.staleCount = 0
	ls.malformedCount = 0
	ls.errorCount = 0
	ls.timeoutCount = 0
	ls.lastReset = now

	return
}

// LogStats logs formatted link statistics since the last reset.
func (ls *LinkStats) LogStats() {
	packets, bytes, stale, malformed, errs, timeouts, duration := ls.GetAndReset()
	if packets == 0 && timeouts == 0 && errs == 0 {
		return
	}

	packetsPerSec := float64(packets) / duration.Seconds()
	kbPerSec := float64(bytes) / duration.Seconds() / 1024

	logMsg := fmt.Sprintf("Link stats (/sec): %.1f packets, %.1f KB", packetsPerSec, kbPerSec)
	if stale > 0 {
		logMsg += fmt.Sprintf(", %d stale", stale)
	}
	if malformed > 0 {
		logMsg += fmt.Sprintf(", %d malformed", malformed)
	}
	if errs > 0 {
		logMsg += fmt.Sprintf(", %d receive errors", errs)
	}
	if timeouts > 0 {
		logMsg += fmt.Sprintf(", %d timeouts", timeouts)
	}

	monitoring.Logf("%s", logMsg)
}
