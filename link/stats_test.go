package link

import (
	"strings"
	"testing"

	"github.com/banshee-data/robolink/internal/monitoring"
)

func TestLinkStatsGetAndReset(t *testing.T) {
	ls := NewLinkStats()
	ls.AddPacket(8)
	ls.AddPacket(8)
	ls.AddStale()
	ls.AddMalformed(3)
	ls.AddReceiveError()
	ls.AddTimeout()

	packets, bytes, stale, malformed, errs, timeouts, _ := ls.GetAndReset()
	if packets != 2 || bytes != 16 {
		t.Errorf("packets/bytes = %d/%d, want 2/16", packets, bytes)
	}
	if stale != 1 || malformed != 1 || errs != 1 || timeouts != 1 {
		t.Errorf("stale/malformed/errs/timeouts = %d/%d/%d/%d, want all 1", stale, malformed, errs, timeouts)
	}

	// Counters must be zero after a reset
	packets, bytes, stale, malformed, errs, timeouts, _ = ls.GetAndReset()
	if packets+bytes+stale+malformed+errs+timeouts != 0 {
		t.Error("GetAndReset did not zero the counters")
	}
}

func TestLinkStatsLogStats(t *testing.T) {
	origLog := monitoring.Logf
	defer monitoring.SetLogger(origLog)

	var logged []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		logged = append(logged, format)
	})

	// Nothing recorded: stays quiet
	ls := NewLinkStats()
	ls.LogStats()
	if len(logged) != 0 {
		t.Errorf("LogStats with no activity logged %d lines, want 0", len(logged))
	}

	ls.AddPacket(8)
	ls.LogStats()
	if len(logged) != 1 {
		t.Fatalf("LogStats logged %d lines, want 1", len(logged))
	}
	if !strings.Contains(logged[0], "%s") {
		t.Errorf("unexpected log format %q", logged[0])
	}
}
