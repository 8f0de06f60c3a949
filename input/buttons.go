package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.uber.org/atomic"

	"callboard/clock"
)

// Button identifies a physical push button.
type Button int

const (
	// ButtonAdvance calls the next ticket.
	ButtonAdvance Button = iota + 1
	// ButtonAlert toggles alert mode.
	ButtonAlert
)

func (b Button) String() string {
	switch b {
	case ButtonAdvance:
		return "advance"
	case ButtonAlert:
		return "alert"
	}
	return fmt.Sprintf("button(%d)", int(b))
}

// buttonBytes maps the bytes standing in for the two GPIO lines.
var buttonBytes = map[byte]Button{
	'1': ButtonAdvance,
	'2': ButtonAlert,
}

// Edge is one falling edge, stamped when it was seen.
type Edge struct {
	Button Button
	At     time.Time
}

// EdgeSource is the hand-off point between the edge interrupt and the
// control loop. Emit never blocks: when the loop is behind, the edge is
// dropped and counted.
type EdgeSource struct {
	edges   chan Edge
	clock   clock.Clock
	dropped atomic.Uint64
}

func NewEdgeSource(clk clock.Clock, buffer int) *EdgeSource {
	if buffer < 1 {
		buffer = 1
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &EdgeSource{
		edges: make(chan Edge, buffer),
		clock: clk,
	}
}

// Emit records a falling edge on button at the current time.
func (s *EdgeSource) Emit(button Button) bool {
	select {
	case s.edges <- Edge{Button: button, At: s.clock.Now()}:
		return true
	default:
		s.dropped.Inc()
		return false
	}
}

// Edges is the consumer side.
func (s *EdgeSource) Edges() <-chan Edge {
	return s.edges
}

// Dropped returns how many edges were lost to a full buffer.
func (s *EdgeSource) Dropped() uint64 {
	return s.dropped.Load()
}

// ScanEdges reads a byte stream standing in for the two GPIO lines: '1'
// is a falling edge on the advance button, '2' on the alert button.
// Anything else is ignored.
func ScanEdges(ctx context.Context, r io.Reader, src *EdgeSource, logger *slog.Logger) error {
	br := bufio.NewReader(r)
	for {
		if ctx.Err() != nil {
			return nil
		}

		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("button read: %w", err)
		}

		button, ok := buttonBytes[b]
		if !ok {
			continue
		}

		if !src.Emit(button) {
			logger.Debug("Button edge dropped", "button", button)
		}
	}
}
