package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *LinkDB {
	t.Helper()
	d, err := NewLinkDB(t.TempDir() + "/link_test.db")
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return d
}

func TestStartSessionAndRecordSamples(t *testing.T) {
	d := newTestDB(t)

	id, err := d.StartSession("127.0.0.1:59200", 200)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, d.RecordSample(id, 1, 8, 900*time.Microsecond, false))
	require.NoError(t, d.RecordSample(id, 2, 8, 1100*time.Microsecond, false))
	require.NoError(t, d.RecordSample(id, 0, 0, 6*time.Millisecond, true))

	samples, err := d.Samples(id)
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Equal(t, uint32(1), samples[0].Sequence)
	assert.Equal(t, int64(900), samples[0].PollMicros)
	assert.False(t, samples[0].TimedOut)
	assert.True(t, samples[2].TimedOut)
}

func TestSessionsListing(t *testing.T) {
	d := newTestDB(t)

	first, err := d.StartSession("127.0.0.1:59200", 200)
	require.NoError(t, err)
	second, err := d.StartSession("127.0.0.1:59201", 500)
	require.NoError(t, err)

	sessions, err := d.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	ids := []string{sessions[0].SessionID, sessions[1].SessionID}
	assert.Contains(t, ids, first)
	assert.Contains(t, ids, second)
}

func TestSummarise(t *testing.T) {
	d := newTestDB(t)

	id, err := d.StartSession("127.0.0.1:59200", 200)
	require.NoError(t, err)

	// Sequences 10..14 with 12 missing, plus one timeout
	for _, seq := range []uint32{10, 11, 13, 14} {
		require.NoError(t, d.RecordSample(id, seq, 8, time.Millisecond, false))
	}
	require.NoError(t, d.RecordSample(id, 0, 0, 6*time.Millisecond, true))

	summary, err := d.Summarise(id)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Samples)
	assert.Equal(t, 4, summary.Captured)
	assert.Equal(t, 1, summary.Timeouts)
	assert.Equal(t, uint32(10), summary.FirstSeq)
	assert.Equal(t, uint32(14), summary.LastSeq)
	assert.Equal(t, int64(1), summary.Missed)
	assert.InDelta(t, 1000, summary.PollMeanMicros, 0.001)
	assert.InDelta(t, 0, summary.PollStdDevMicros, 0.001)
}

func TestSummariseEmptySession(t *testing.T) {
	d := newTestDB(t)

	id, err := d.StartSession("127.0.0.1:59200", 200)
	require.NoError(t, err)

	_, err = d.Summarise(id)
	assert.Error(t, err, "summary of an empty session should fail")
}

func TestMigrateUpOnFreshDatabase(t *testing.T) {
	d, err := OpenLinkDB(t.TempDir() + "/migrate_test.db")
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.MigrateUp("migrations"))

	version, dirty, err := d.MigrateVersion("migrations")
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Schema from the migration must accept writes
	id, err := d.StartSession("127.0.0.1:59200", 100)
	require.NoError(t, err)
	require.NoError(t, d.RecordSample(id, 1, 8, time.Millisecond, false))
}
