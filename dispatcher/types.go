package dispatcher

import (
	"time"

	"callboard/display"
	"callboard/ticket"
)

// State is the dispatcher's coarse lifecycle.
type State string

const (
	// StateIdle means no ticket has been called since boot.
	StateIdle State = "idle"
	// StateServing means a current ticket exists.
	StateServing State = "serving"
)

// Config holds the dispatcher's tunables.
type Config struct {
	Capacity         int              `toml:"capacity" validate:"gte=1,lte=999"`
	InterleavePeriod int              `toml:"interleavePeriod" validate:"gte=1"`
	Numbering        ticket.Numbering `toml:"numbering" validate:"oneof=shared per_class"`
	DebounceMs       int              `toml:"debounceMs" validate:"gte=0"`
}

// DebounceWindow returns the configured debounce window.
func (c Config) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// AdvanceEvent is the result of a successful call.
type AdvanceEvent struct {
	Served      ticket.Ticket  `json:"served"`
	Next        *ticket.Ticket `json:"next,omitempty"`
	Alert       bool           `json:"alert"`
	CallsServed uint32         `json:"calls_served"`
}

// Listener observes dispatcher outcomes. Callbacks run on the dispatcher's
// goroutine and must not call back into it.
type Listener interface {
	Submitted(t ticket.Ticket)
	Rejected(class ticket.Class, err error)
	Served(ev AdvanceEvent)
	AlertChanged(enabled bool)
}

// Status is a point-in-time summary for reporting.
type Status struct {
	State            State    `json:"state"`
	Current          string   `json:"current"`
	Next             string   `json:"next"`
	PriorityLength   int      `json:"priority_length"`
	CommonLength     int      `json:"common_length"`
	PriorityCapacity int      `json:"priority_capacity"`
	CommonCapacity   int      `json:"common_capacity"`
	PriorityItems    []string `json:"priority_items"`
	CommonItems      []string `json:"common_items"`
	CallsServed      uint32   `json:"calls_served"`
	Rejected         uint64   `json:"rejected"`
	AlertEnabled     bool     `json:"alert_enabled"`
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithView sets the display the dispatcher notifies after each change.
func WithView(view display.View) Option {
	return func(d *Dispatcher) {
		d.view = view
	}
}

// WithListener registers an observer. May be given more than once.
func WithListener(l Listener) Option {
	return func(d *Dispatcher) {
		d.listeners = append(d.listeners, l)
	}
}
