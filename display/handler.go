package display

import (
	"context"
	"log/slog"

	"go.uber.org/atomic"
)

// Message is one two-line frame.
type Message struct {
	Current string
	Next    string
}

// Handler decouples the control loop from a slow drawing surface. Show
// never blocks: when the buffer is full the oldest waiting frame is
// dropped so the newest one is always drawn.
type Handler struct {
	view     View
	messages chan Message
	dropped  atomic.Uint64
	logger   *slog.Logger
}

func NewHandler(view View, buffer int, logger *slog.Logger) *Handler {
	if buffer < 1 {
		buffer = 1
	}
	return &Handler{
		view:     view,
		messages: make(chan Message, buffer),
		logger:   logger,
	}
}

// Show queues a frame. It must only be called from one goroutine.
func (h *Handler) Show(current, next string) {
	msg := Message{Current: current, Next: next}
	for {
		select {
		case h.messages <- msg:
			return
		default:
		}

		select {
		case stale := <-h.messages:
			h.dropped.Inc()
			h.logger.Debug("Display busy, stale frame dropped", "current", stale.Current, "next", stale.Next)
		default:
		}
	}
}

// Run draws frames until ctx is done. Run should be called in a separate goroutine.
func (h *Handler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.messages:
			h.view.Show(msg.Current, msg.Next)
		}
	}
}

// Dropped returns how many frames were discarded because the view was busy.
func (h *Handler) Dropped() uint64 {
	return h.dropped.Load()
}

// Recorder keeps every frame it is shown.
type Recorder struct {
	Frames []Message
}

func (r *Recorder) Show(current, next string) {
	r.Frames = append(r.Frames, Message{Current: current, Next: next})
}

// Last returns the most recent frame.
func (r *Recorder) Last() (Message, bool) {
	if len(r.Frames) == 0 {
		return Message{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}
