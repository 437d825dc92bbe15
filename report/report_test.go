package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/robolink/db"
)

func fixtureSamples() []db.Sample {
	return []db.Sample{
		{Sequence: 10, Bytes: 8, PollMicros: 900},
		{Sequence: 11, Bytes: 8, PollMicros: 1100},
		{TimedOut: true, PollMicros: 6000},
		{Sequence: 13, Bytes: 8, PollMicros: 950},
	}
}

func fixtureSummary() *db.SessionSummary {
	return &db.SessionSummary{
		SessionID:        "test-session",
		Samples:          4,
		Captured:         3,
		Timeouts:         1,
		FirstSeq:         10,
		LastSeq:          13,
		Missed:           1,
		PollMeanMicros:   983,
		PollStdDevMicros: 104,
		PollP95Micros:    1100,
	}
}

func TestWriteHTML(t *testing.T) {
	info := db.SessionInfo{
		SessionID:    "test-session",
		LocalAddr:    "127.0.0.1:59200",
		TargetRateHz: 200,
		StartedAt:    time.Now(),
	}

	var buf bytes.Buffer
	if err := WriteHTML(&buf, info, fixtureSummary(), fixtureSamples()); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}

	html := buf.String()
	if !strings.Contains(html, "echarts") {
		t.Error("rendered page does not reference echarts")
	}
	if !strings.Contains(html, "Captured sequence numbers") {
		t.Error("rendered page is missing the sequence chart title")
	}
	if !strings.Contains(html, "test-session") {
		t.Error("rendered page is missing the session ID")
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poll.png")
	if err := SavePNG(path, fixtureSamples()); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat plot file: %v", err)
	}
	if fi.Size() == 0 {
		t.Error("plot file is empty")
	}
}

func TestSavePNGNoCapturedSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	err := SavePNG(path, []db.Sample{{TimedOut: true, PollMicros: 6000}})
	if err == nil {
		t.Error("expected error when no captured samples exist")
	}
}
