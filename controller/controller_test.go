package controller

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callboard/buzzer"
	"callboard/clock"
	"callboard/display"
	"callboard/dispatcher"
	"callboard/input"
	"callboard/logger"
	"callboard/status"
	"callboard/ticket"
)

var boot = time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC)

type frameView chan display.Message

func (v frameView) Show(current, next string) {
	v <- display.Message{Current: current, Next: next}
}

type alertListener chan bool

func (alertListener) Submitted(ticket.Ticket)        {}
func (alertListener) Rejected(ticket.Class, error)   {}
func (alertListener) Served(dispatcher.AdvanceEvent) {}
func (a alertListener) AlertChanged(enabled bool)    { a <- enabled }

type lineChan chan bool

func (l lineChan) Set(on bool) { l <- on }

type harness struct {
	clk        *clock.FakeClock
	dispatcher *dispatcher.Dispatcher
	frames     frameView
	alerts     alertListener
	line       lineChan
	commands   chan ticket.Class
	edges      *input.EdgeSource
	reports    chan status.Report
	controller *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clk:      clock.Fake(boot),
		frames:   make(frameView, 32),
		alerts:   make(alertListener, 8),
		line:     make(lineChan, 8),
		commands: make(chan ticket.Class),
		reports:  make(chan status.Report, 8),
	}

	d, err := dispatcher.New(dispatcher.DefaultConfig(), h.clk, logger.Discard(),
		dispatcher.WithView(h.frames),
		dispatcher.WithListener(h.alerts),
	)
	require.NoError(t, err)
	h.dispatcher = d
	h.edges = input.NewEdgeSource(h.clk, 8)

	h.controller = New(
		Config{PollInterval: 100 * time.Millisecond, StatusInterval: time.Minute},
		d,
		h.commands,
		h.edges,
		buzzer.NewPulser(h.line),
		status.NewReporter("test", h.clk),
		h.clk,
		logger.Discard(),
	)
	h.controller.OnReport(func(r status.Report) { h.reports <- r })
	return h
}

func (h *harness) start(t *testing.T) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.controller.Run(ctx) }()

	// The boot frame means both tickers exist.
	h.expectFrame(t, "Current: Empty", "Next: Empty")

	return func() {
		stop()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after cancel")
		}
	}
}

func (h *harness) expectFrame(t *testing.T, current, next string) {
	t.Helper()
	select {
	case f := <-h.frames:
		assert.Equal(t, display.Message{Current: current, Next: next}, f)
	case <-time.After(2 * time.Second):
		t.Fatalf("no frame, wanted %q / %q", current, next)
	}
}

func expect[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting")
	}
	var zero T
	return zero
}

func TestSubmitAndAdvance(t *testing.T) {
	h := newHarness(t)
	stop := h.start(t)

	h.commands <- ticket.ClassCommon
	h.expectFrame(t, "Current: Empty", "Next: B001")
	h.commands <- ticket.ClassCommon
	h.commands <- ticket.ClassPriority
	h.expectFrame(t, "Current: Empty", "Next: B001")
	h.expectFrame(t, "Current: Empty", "Next: B001")

	require.True(t, h.edges.Emit(input.ButtonAdvance))
	h.expectFrame(t, "Current: B001", "Next: B002")

	// Contact bounce 1 ms later is swallowed.
	h.clk.Advance(time.Millisecond)
	require.True(t, h.edges.Emit(input.ButtonAdvance))

	h.clk.Advance(600 * time.Millisecond)
	require.True(t, h.edges.Emit(input.ButtonAdvance))
	h.expectFrame(t, "Current: B002", "Next: A003")

	stop()
	assert.Equal(t, uint32(2), h.dispatcher.CallsServed())
	assert.Empty(t, h.line, "buzzer must stay quiet with alert off")
}

func TestAlertPulsesBuzzerForOneTick(t *testing.T) {
	h := newHarness(t)
	stop := h.start(t)

	require.True(t, h.edges.Emit(input.ButtonAlert))
	assert.True(t, expect[bool](t, h.alerts))
	assert.Empty(t, h.line, "toggling does not sound the buzzer")

	h.commands <- ticket.ClassPriority
	h.expectFrame(t, "Current: Empty", "Next: A001")

	require.True(t, h.edges.Emit(input.ButtonAdvance))
	h.expectFrame(t, "Current: A001", "Next: Empty")
	assert.True(t, expect[bool](t, h.line))

	h.clk.Advance(100 * time.Millisecond)
	assert.False(t, expect[bool](t, h.line))

	stop()
}

func TestReports(t *testing.T) {
	h := newHarness(t)
	stop := h.start(t)

	h.commands <- ticket.ClassCommon
	h.expectFrame(t, "Current: Empty", "Next: B001")

	h.clk.Advance(time.Minute)
	periodic := expect[status.Report](t, h.reports)
	assert.Equal(t, 1, periodic.Dispatcher.CommonLength)
	assert.Equal(t, time.Minute, periodic.Uptime)

	stop()
	final := expect[status.Report](t, h.reports)
	assert.Equal(t, "test", final.Session)
}

func TestClosedSerialKeepsButtonsAlive(t *testing.T) {
	h := newHarness(t)
	stop := h.start(t)

	close(h.commands)
	require.True(t, h.edges.Emit(input.ButtonAlert))
	assert.True(t, expect[bool](t, h.alerts))

	stop()
	assert.True(t, h.dispatcher.AlertEnabled())
}

func TestSerialLineDrivesButtons(t *testing.T) {
	h := newHarness(t)
	stop := h.start(t)

	reader := input.NewSerialReader(strings.NewReader("B1"), logger.Discard())
	reader.ForwardButtons(h.edges)
	go func() { _ = reader.Run(context.Background(), h.commands) }()

	h.expectFrame(t, "Current: Empty", "Next: B001")
	h.expectFrame(t, "Current: B001", "Next: Empty")

	stop()
	assert.Equal(t, uint32(1), h.dispatcher.CallsServed())
}
