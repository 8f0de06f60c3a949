package buzzer

import (
	"io"
	"log/slog"

	"go.uber.org/atomic"
)

// Actuator drives the buzzer line.
type Actuator interface {
	Set(on bool)
}

// Pulser asserts the buzzer for a single control-loop tick. Pulse raises
// the line; the next Release drops it again.
type Pulser struct {
	actuator Actuator
	asserted atomic.Bool
	pulses   atomic.Uint64
}

func NewPulser(actuator Actuator) *Pulser {
	if actuator == nil {
		actuator = Nop{}
	}
	return &Pulser{actuator: actuator}
}

func (p *Pulser) Pulse() {
	p.pulses.Inc()
	p.asserted.Store(true)
	p.actuator.Set(true)
}

// Release drops the line if a pulse is pending.
func (p *Pulser) Release() {
	if p.asserted.CompareAndSwap(true, false) {
		p.actuator.Set(false)
	}
}

func (p *Pulser) Asserted() bool {
	return p.asserted.Load()
}

// Pulses returns how many times the buzzer has sounded.
func (p *Pulser) Pulses() uint64 {
	return p.pulses.Load()
}

// Terminal rings the terminal bell when the line goes high.
type Terminal struct {
	w      io.Writer
	logger *slog.Logger
}

func NewTerminal(w io.Writer, logger *slog.Logger) *Terminal {
	return &Terminal{w: w, logger: logger}
}

func (t *Terminal) Set(on bool) {
	t.logger.Debug("Buzzer line", "on", on)
	if !on {
		return
	}
	if _, err := t.w.Write([]byte{'\a'}); err != nil {
		t.logger.Error("Failed to ring buzzer", "error", err)
	}
}

// Nop ignores the line.
type Nop struct{}

func (Nop) Set(bool) {}
