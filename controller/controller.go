// Package controller runs the panel's control loop. The loop is the only
// goroutine that touches the dispatcher: serial commands and button edges
// arrive over channels and are applied one at a time.
package controller

import (
	"context"
	"log/slog"
	"time"

	"callboard/buzzer"
	"callboard/clock"
	"callboard/dispatcher"
	"callboard/input"
	"callboard/status"
	"callboard/ticket"
)

// Config holds the loop timing.
type Config struct {
	PollInterval   time.Duration
	StatusInterval time.Duration
}

// Controller wires input channels to the dispatcher.
type Controller struct {
	cfg        Config
	dispatcher *dispatcher.Dispatcher
	commands   <-chan ticket.Class
	edges      *input.EdgeSource
	pulser     *buzzer.Pulser
	reporter   *status.Reporter
	clock      clock.Clock
	onReport   func(status.Report)
	logger     *slog.Logger
}

func New(
	cfg Config,
	d *dispatcher.Dispatcher,
	commands <-chan ticket.Class,
	edges *input.EdgeSource,
	pulser *buzzer.Pulser,
	reporter *status.Reporter,
	clk clock.Clock,
	logger *slog.Logger,
) *Controller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}
	if clk == nil {
		clk = clock.Real()
	}
	if pulser == nil {
		pulser = buzzer.NewPulser(nil)
	}
	return &Controller{
		cfg:        cfg,
		dispatcher: d,
		commands:   commands,
		edges:      edges,
		pulser:     pulser,
		reporter:   reporter,
		clock:      clk,
		onReport:   func(status.Report) {},
		logger:     logger,
	}
}

// OnReport sets a hook that receives every status report.
func (c *Controller) OnReport(fn func(status.Report)) {
	c.onReport = fn
}

// Run drives the loop until ctx is done. It emits a last status report on
// the way out.
func (c *Controller) Run(ctx context.Context) error {
	poll := c.clock.NewTicker(c.cfg.PollInterval)
	defer poll.Stop()

	var statusTick <-chan time.Time
	if c.cfg.StatusInterval > 0 && c.reporter != nil {
		t := c.clock.NewTicker(c.cfg.StatusInterval)
		defer t.Stop()
		statusTick = t.C
	}

	var edges <-chan input.Edge
	if c.edges != nil {
		edges = c.edges.Edges()
	}
	commands := c.commands

	c.dispatcher.Publish()
	c.logger.Info("Control loop started", "poll", c.cfg.PollInterval)

	for {
		select {
		case <-ctx.Done():
			c.pulser.Release()
			c.report()
			c.logger.Info("Control loop stopped")
			return nil

		case class, ok := <-commands:
			if !ok {
				// Serial link gone; buttons keep working.
				commands = nil
				continue
			}
			c.submit(class)

		case edge := <-edges:
			c.press(edge)

		case <-poll.C:
			c.pulser.Release()

		case <-statusTick:
			c.report()
		}
	}
}

func (c *Controller) submit(class ticket.Class) {
	t, err := c.dispatcher.Submit(class)
	if err != nil {
		// Already logged by the dispatcher; nothing goes back over the link.
		return
	}
	c.logger.Debug("Submission accepted", "ticket", t.Code())
}

func (c *Controller) press(edge input.Edge) {
	switch edge.Button {
	case input.ButtonAdvance:
		ev, ok := c.dispatcher.OnButtonAdvance(edge.At)
		if ok && ev.Alert {
			c.pulser.Pulse()
		}
	case input.ButtonAlert:
		c.dispatcher.OnButtonToggleAlert(edge.At)
	default:
		c.logger.Warn("Edge from unknown button", "button", edge.Button)
	}
}

func (c *Controller) report() {
	if c.reporter == nil {
		return
	}
	var dropped uint64
	if c.edges != nil {
		dropped = c.edges.Dropped()
	}
	r := c.reporter.Build(c.dispatcher.Status(), dropped, c.pulser.Pulses())
	c.logger.Info(status.Format(r))
	c.onReport(r)
}
