// Package dispatcher owns the two ticket queues and every piece of state
// the buttons and the serial link act on.
//
// A Dispatcher is not synchronized. Exactly one goroutine (the controller
// loop) may call it; button and serial events reach it as messages.
package dispatcher

import (
	"fmt"
	"log/slog"
	"time"

	"callboard/clock"
	"callboard/debounce"
	"callboard/display"
	"callboard/queue"
	"callboard/sequencer"
	"callboard/ticket"
)

type Dispatcher struct {
	priority *queue.Queue
	common   *queue.Queue
	numberer *ticket.Numberer
	policy   sequencer.Policy

	advanceGate *debounce.Gate
	alertGate   *debounce.Gate

	callsServed  uint32
	current      *ticket.Ticket
	next         *ticket.Ticket
	alertEnabled bool
	rejected     uint64

	clock     clock.Clock
	view      display.View
	listeners []Listener
	logger    *slog.Logger
}

// DefaultConfig mirrors the panel's factory settings.
func DefaultConfig() Config {
	return Config{
		Capacity:         queue.DefaultCapacity,
		InterleavePeriod: sequencer.DefaultPeriod,
		Numbering:        ticket.NumberingShared,
		DebounceMs:       int(debounce.DefaultWindow / time.Millisecond),
	}
}

func New(cfg Config, clk clock.Clock, logger *slog.Logger, opts ...Option) (*Dispatcher, error) {
	if cfg.Capacity > ticket.CodeSpace {
		return nil, fmt.Errorf("dispatcher: capacity %d exceeds the %d ticket codes", cfg.Capacity, ticket.CodeSpace)
	}

	policy, err := sequencer.NewPolicy(cfg.InterleavePeriod)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: %w", err)
	}

	numberer, err := ticket.NewNumberer(cfg.Numbering)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: %w", err)
	}

	if clk == nil {
		clk = clock.Real()
	}

	d := &Dispatcher{
		priority:    queue.New(ticket.ClassPriority, cfg.Capacity),
		common:      queue.New(ticket.ClassCommon, cfg.Capacity),
		numberer:    numberer,
		policy:      policy,
		advanceGate: debounce.New(cfg.DebounceWindow()),
		alertGate:   debounce.New(cfg.DebounceWindow()),
		clock:       clk,
		view:        display.Nop{},
		logger:      logger,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Submit issues a ticket of the given class and queues it. When the class
// queue is full the ticket is dropped, no number is consumed and the error
// wraps queue.ErrQueueFull.
func (d *Dispatcher) Submit(class ticket.Class) (ticket.Ticket, error) {
	q, err := d.queueFor(class)
	if err != nil {
		return ticket.Ticket{}, err
	}

	if q.IsFull() {
		err := &queue.QueueFullError{Class: class, Capacity: q.Cap()}
		d.rejected++
		d.logger.Warn("Ticket rejected", "class", class, "length", q.Len(), "error", err)
		for _, l := range d.listeners {
			l.Rejected(class, err)
		}
		return ticket.Ticket{}, err
	}

	t := ticket.Ticket{
		Class:    class,
		Sequence: d.nextSequence(q, class),
		IssuedAt: d.clock.Now(),
	}
	if err := q.Push(t); err != nil {
		// Unreachable while the capacity check above holds.
		return ticket.Ticket{}, err
	}

	d.logger.Debug("Ticket issued", "ticket", t.Code(), "length", q.Len())

	d.refreshNext()
	d.publish()
	for _, l := range d.listeners {
		l.Submitted(t)
	}

	return t, nil
}

// CallNext serves the next ticket chosen by the interleave policy. It
// reports false, and changes nothing, when both queues are empty.
func (d *Dispatcher) CallNext() (AdvanceEvent, bool) {
	q := d.pick()
	if q == nil {
		return AdvanceEvent{}, false
	}

	t, _ := q.PopFront()
	d.current = &t
	d.callsServed++
	d.refreshNext()

	ev := AdvanceEvent{
		Served:      t,
		Next:        d.next,
		Alert:       d.alertEnabled,
		CallsServed: d.callsServed,
	}

	d.logger.Info("Ticket called", "ticket", t.Code(), "next", d.codeOf(d.next), "calls_served", d.callsServed)

	d.publish()
	for _, l := range d.listeners {
		l.Served(ev)
	}

	return ev, true
}

// OnButtonAdvance handles a press of the call button at now. Presses inside
// the debounce window are ignored. A press with nothing to serve still
// closes the window.
func (d *Dispatcher) OnButtonAdvance(now time.Time) (AdvanceEvent, bool) {
	if !d.advanceGate.ShouldAccept(now) {
		return AdvanceEvent{}, false
	}

	ev, ok := d.CallNext()
	if !ok {
		d.logger.Debug("Call pressed with no tickets waiting")
	}
	return ev, ok
}

// ToggleAlert flips alert mode and returns the new setting.
func (d *Dispatcher) ToggleAlert() bool {
	d.alertEnabled = !d.alertEnabled
	d.logger.Info("Alert mode changed", "enabled", d.alertEnabled)
	for _, l := range d.listeners {
		l.AlertChanged(d.alertEnabled)
	}
	return d.alertEnabled
}

// OnButtonToggleAlert handles a press of the alert button at now and
// returns the alert setting after the press.
func (d *Dispatcher) OnButtonToggleAlert(now time.Time) bool {
	if !d.alertGate.ShouldAccept(now) {
		return d.alertEnabled
	}
	return d.ToggleAlert()
}

// RenderSnapshot returns the two display lines.
func (d *Dispatcher) RenderSnapshot() (string, string) {
	return display.Lines(d.current, d.next)
}

// Publish pushes the current snapshot to the view.
func (d *Dispatcher) Publish() {
	d.publish()
}

func (d *Dispatcher) State() State {
	if d.current == nil {
		return StateIdle
	}
	return StateServing
}

// Current returns the ticket last called.
func (d *Dispatcher) Current() (ticket.Ticket, bool) {
	if d.current == nil {
		return ticket.Ticket{}, false
	}
	return *d.current, true
}

// NextPreview returns the ticket CallNext would serve now.
func (d *Dispatcher) NextPreview() (ticket.Ticket, bool) {
	if d.next == nil {
		return ticket.Ticket{}, false
	}
	return *d.next, true
}

func (d *Dispatcher) AlertEnabled() bool {
	return d.alertEnabled
}

func (d *Dispatcher) CallsServed() uint32 {
	return d.callsServed
}

// GetQueueLengths returns the priority and common queue lengths.
func (d *Dispatcher) GetQueueLengths() (int, int) {
	return d.priority.Len(), d.common.Len()
}

func (d *Dispatcher) IsEmpty() bool {
	return d.priority.IsEmpty() && d.common.IsEmpty()
}

func (d *Dispatcher) Status() Status {
	current, next := d.codeOf(d.current), d.codeOf(d.next)
	return Status{
		State:            d.State(),
		Current:          current,
		Next:             next,
		PriorityLength:   d.priority.Len(),
		CommonLength:     d.common.Len(),
		PriorityCapacity: d.priority.Cap(),
		CommonCapacity:   d.common.Cap(),
		PriorityItems:    d.priority.Codes(),
		CommonItems:      d.common.Codes(),
		CallsServed:      d.callsServed,
		Rejected:         d.rejected,
		AlertEnabled:     d.alertEnabled,
	}
}

func (d *Dispatcher) queueFor(class ticket.Class) (*queue.Queue, error) {
	switch class {
	case ticket.ClassPriority:
		return d.priority, nil
	case ticket.ClassCommon:
		return d.common, nil
	}
	return nil, fmt.Errorf("unknown ticket class %q", class)
}

// nextSequence takes numbers until one whose code is not already waiting in
// q. The class queue holds fewer tickets than there are codes, so this ends.
func (d *Dispatcher) nextSequence(q *queue.Queue, class ticket.Class) uint32 {
	for {
		seq := d.numberer.Next(class)
		if !q.HasNumber(ticket.Ticket{Class: class, Sequence: seq}.Number()) {
			return seq
		}
		d.logger.Debug("Skipping number still on the board", "class", class, "sequence", seq)
	}
}

// refreshNext recomputes the preview from the queue heads.
func (d *Dispatcher) refreshNext() {
	q := d.pick()
	if q == nil {
		d.next = nil
		return
	}

	t, _ := q.PeekFront()
	d.next = &t
}

// pick returns the queue the next call is served from, or nil.
func (d *Dispatcher) pick() *queue.Queue {
	switch d.policy.Choose(d.callsServed, !d.priority.IsEmpty(), !d.common.IsEmpty()) {
	case sequencer.ChoosePriority:
		return d.priority
	case sequencer.ChooseCommon:
		return d.common
	}
	return nil
}

func (d *Dispatcher) publish() {
	current, next := d.RenderSnapshot()
	d.view.Show(current, next)
}

func (d *Dispatcher) codeOf(t *ticket.Ticket) string {
	if t == nil {
		return display.Empty
	}
	return t.Code()
}
