// Package display turns dispatcher state into the two text lines shown on
// the panel and hands them to whatever surface draws them.
package display

import (
	"callboard/ticket"
)

// Empty is shown in place of a ticket code when there is nothing to show.
const Empty = "Empty"

// DefaultColumns fits a 128 px wide panel with an 8 px font.
const DefaultColumns = 16

// View receives the current and next lines after every change.
type View interface {
	Show(current, next string)
}

// Lines formats the current and next tickets as display lines.
func Lines(current, next *ticket.Ticket) (string, string) {
	return "Current: " + code(current), "Next: " + code(next)
}

func code(t *ticket.Ticket) string {
	if t == nil {
		return Empty
	}
	return t.Code()
}

// Truncate cuts s to at most columns bytes. Lines are ASCII.
func Truncate(s string, columns int) string {
	if columns > 0 && len(s) > columns {
		return s[:columns]
	}
	return s
}

// Nop discards every update.
type Nop struct{}

func (Nop) Show(string, string) {}
