// Package sequencer decides which queue the next call is served from.
//
// One slot in every Period calls is reserved for the priority queue; the
// other slots go to the common queue. Whichever queue is non-empty is
// served when the preferred one is empty, so neither class starves.
package sequencer

import "fmt"

// DefaultPeriod is the interleave period used when none is configured.
const DefaultPeriod = 3

// Choice is the queue a call is served from.
type Choice int

const (
	ChooseNone Choice = iota
	ChooseCommon
	ChoosePriority
)

func (c Choice) String() string {
	switch c {
	case ChooseCommon:
		return "common"
	case ChoosePriority:
		return "priority"
	default:
		return "none"
	}
}

// Policy is the interleave rule. The zero value is not usable; use NewPolicy.
type Policy struct {
	period uint32
}

func NewPolicy(period int) (Policy, error) {
	if period < 1 {
		return Policy{}, fmt.Errorf("interleave period must be at least 1, got %d", period)
	}
	return Policy{period: uint32(period)}, nil
}

func (p Policy) Period() int {
	return int(p.period)
}

// PrioritySlot reports whether the call after callsServed calls is the
// reserved priority slot.
func (p Policy) PrioritySlot(callsServed uint32) bool {
	return callsServed%p.period == p.period-1
}

// Choose picks the queue for the call after callsServed calls.
func (p Policy) Choose(callsServed uint32, priorityReady, commonReady bool) Choice {
	switch {
	case priorityReady && p.PrioritySlot(callsServed):
		return ChoosePriority
	case commonReady:
		return ChooseCommon
	case priorityReady:
		return ChoosePriority
	default:
		return ChooseNone
	}
}
