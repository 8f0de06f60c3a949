package input

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callboard/clock"
	"callboard/logger"
	"callboard/ticket"
)

func TestSerialReaderMapsCommands(t *testing.T) {
	out := make(chan ticket.Class, 10)
	r := NewSerialReader(strings.NewReader("AxB\nab?B"), logger.Discard())

	require.NoError(t, r.Run(context.Background(), out))
	close(out)

	var got []ticket.Class
	for c := range out {
		got = append(got, c)
	}
	assert.Equal(t, []ticket.Class{ticket.ClassPriority, ticket.ClassCommon, ticket.ClassCommon}, got)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("line noise") }

func TestSerialReaderReportsReadErrors(t *testing.T) {
	r := NewSerialReader(failingReader{}, logger.Discard())
	err := r.Run(context.Background(), make(chan ticket.Class))
	assert.ErrorContains(t, err, "line noise")
}

func TestSerialReaderStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Unbuffered and never read: only ctx can release the send.
	r := NewSerialReader(strings.NewReader("A"), logger.Discard())
	assert.NoError(t, r.Run(ctx, make(chan ticket.Class)))
}

func TestEdgeSourceStampsAndDrops(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.Fake(start)
	src := NewEdgeSource(clk, 1)

	assert.True(t, src.Emit(ButtonAdvance))
	clk.Advance(time.Millisecond)
	assert.False(t, src.Emit(ButtonAlert), "buffer is full")
	assert.Equal(t, uint64(1), src.Dropped())

	edge := <-src.Edges()
	assert.Equal(t, Edge{Button: ButtonAdvance, At: start}, edge)
}

func TestScanEdges(t *testing.T) {
	src := NewEdgeSource(clock.Fake(time.Unix(0, 0)), 8)

	err := ScanEdges(context.Background(), strings.NewReader("1x2\n1"), src, logger.Discard())
	require.NoError(t, err)

	var got []Button
	for len(src.Edges()) > 0 {
		got = append(got, (<-src.Edges()).Button)
	}
	assert.Equal(t, []Button{ButtonAdvance, ButtonAlert, ButtonAdvance}, got)
}

func TestButtonString(t *testing.T) {
	assert.Equal(t, "advance", ButtonAdvance.String())
	assert.Equal(t, "alert", ButtonAlert.String())
	assert.Equal(t, "button(9)", Button(9).String())
}

func TestCommandsSet(t *testing.T) {
	assert.True(t, Commands.Contains('A'))
	assert.True(t, Commands.Contains('B'))
	assert.False(t, Commands.Contains('C'))
	assert.False(t, Commands.Contains('1'))
	assert.Equal(t, len(ticket.Classes), Commands.Cardinality())
}

func TestSerialReaderForwardsButtons(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	edges := NewEdgeSource(clock.Fake(start), 8)
	out := make(chan ticket.Class, 8)

	r := NewSerialReader(strings.NewReader("B1x2A"), logger.Discard())
	r.ForwardButtons(edges)
	require.NoError(t, r.Run(context.Background(), out))

	assert.Len(t, out, 2)
	assert.Equal(t, ticket.ClassCommon, <-out)
	assert.Equal(t, ticket.ClassPriority, <-out)

	require.Len(t, edges.Edges(), 2)
	assert.Equal(t, Edge{Button: ButtonAdvance, At: start}, <-edges.Edges())
	assert.Equal(t, Edge{Button: ButtonAlert, At: start}, <-edges.Edges())
}

func TestSerialReaderIgnoresButtonsWithoutSource(t *testing.T) {
	out := make(chan ticket.Class, 8)
	r := NewSerialReader(strings.NewReader("12"), logger.Discard())

	require.NoError(t, r.Run(context.Background(), out))
	assert.Empty(t, out, "button bytes never become tickets")
}

func TestSerialReaderInterrupt(t *testing.T) {
	out := make(chan ticket.Class, 4)
	r := NewSerialReader(strings.NewReader("A\x03B"), logger.Discard())

	interrupted := false
	r.OnInterrupt(func() { interrupted = true })

	require.NoError(t, r.Run(context.Background(), out))
	assert.True(t, interrupted)
	assert.Len(t, out, 1, "bytes after Ctrl-C are not read")
}

func TestOpenSerialPipe(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/commands"
	require.NoError(t, os.WriteFile(path, []byte("AB"), 0o600))

	port, err := OpenSerial(path)
	require.NoError(t, err)
	assert.False(t, port.Raw)

	out := make(chan ticket.Class, 4)
	require.NoError(t, NewSerialReader(port, logger.Discard()).Run(context.Background(), out))
	assert.Len(t, out, 2)
	assert.NoError(t, port.Close())

	var buf bytes.Buffer
	assert.Same(t, &buf, port.Output(&buf), "a file leaves output untouched")

	_, err = OpenSerial(dir + "/missing")
	assert.Error(t, err)
}

func TestRawStdinOutputReturnsCarriage(t *testing.T) {
	var buf bytes.Buffer
	port := &Port{Raw: true, stdin: true}

	w := port.Output(&buf)
	n, err := w.Write([]byte("Current: B001\nNext: Empty\n"))
	require.NoError(t, err)
	assert.Equal(t, len("Current: B001\nNext: Empty\n"), n)
	assert.Equal(t, "Current: B001\r\nNext: Empty\r\n", buf.String())

	device := &Port{Raw: true}
	assert.Same(t, &buf, device.Output(&buf), "a separate serial tty does not share our output")
}
