package journal

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callboard/clock"
	"callboard/dispatcher"
	"callboard/logger"
	"callboard/ticket"
)

func openTemp(t *testing.T, dir string) *Journal {
	t.Helper()
	j, err := Open(dir, uuid.NewString(), clock.Fake(time.Unix(1700000000, 0)), logger.Discard())
	require.NoError(t, err)
	return j
}

func TestStoreKeyIsFixedWidth(t *testing.T) {
	assert.Equal(t, storeKey(totalsKey), storeKey(totalsKey))
	assert.NotEqual(t, storeKey(recordKey("s", 1)), storeKey(recordKey("s", 2)))
	assert.Len(t, storeKey("short"), 56)
	assert.Len(t, storeKey(recordKey(uuid.NewString(), 1)), 56)
}

func TestEncodeDecodeRecord(t *testing.T) {
	in := Record{Session: "s", Seq: 3, Kind: KindServed, Class: ticket.ClassPriority}
	data, err := encode(in)
	require.NoError(t, err)

	var out Record
	require.NoError(t, decode(data, &out))
	assert.Equal(t, in, out)

	assert.Error(t, decode([]byte("not gzip"), &out))
}

func TestJournalRecordsSession(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal.db")
	j := openTemp(t, dir)
	defer j.Close()

	b1 := ticket.Ticket{Class: ticket.ClassCommon, Sequence: 1}
	j.Submitted(b1)
	j.Rejected(ticket.ClassCommon, errors.New("full"))
	j.AlertChanged(true)
	j.Served(dispatcher.AdvanceEvent{Served: b1, Alert: true, CallsServed: 1})

	records, err := j.Records(j.Session())
	require.NoError(t, err)
	require.Len(t, records, 4)

	kinds := []Kind{records[0].Kind, records[1].Kind, records[2].Kind, records[3].Kind}
	assert.Equal(t, []Kind{KindSubmitted, KindRejected, KindAlert, KindServed}, kinds)
	assert.Equal(t, uint64(4), records[3].Seq)
	assert.Equal(t, "B001", records[3].Ticket.Code())
	assert.True(t, records[3].Alert)
	assert.Equal(t, j.Session(), records[0].Session)

	totals := j.Totals()
	assert.Equal(t, uint64(1), totals.Sessions)
	assert.Equal(t, uint64(1), totals.Submitted[ticket.ClassCommon])
	assert.Equal(t, uint64(1), totals.Rejected[ticket.ClassCommon])
	assert.Equal(t, uint64(1), totals.Served[ticket.ClassCommon])
}

func TestJournalTotalsSurviveReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal.db")

	first := openTemp(t, dir)
	first.Submitted(ticket.Ticket{Class: ticket.ClassPriority, Sequence: 1})
	firstSession := first.Session()
	require.NoError(t, first.Close())

	second := openTemp(t, dir)
	defer second.Close()

	totals := second.Totals()
	assert.Equal(t, uint64(2), totals.Sessions)
	assert.Equal(t, uint64(1), totals.Submitted[ticket.ClassPriority])

	old, err := second.Records(firstSession)
	require.NoError(t, err)
	assert.Len(t, old, 1)

	fresh, err := second.Records(second.Session())
	require.NoError(t, err)
	assert.Empty(t, fresh)
}
