package journal

import (
	"time"

	"callboard/ticket"
)

// Kind says what a record describes.
type Kind string

const (
	KindSubmitted Kind = "submitted"
	KindRejected  Kind = "rejected"
	KindServed    Kind = "served"
	KindAlert     Kind = "alert"
)

// Record is one journal entry.
type Record struct {
	Session     string         `json:"session"`
	Seq         uint64         `json:"seq"`
	Kind        Kind           `json:"kind"`
	Class       ticket.Class   `json:"class,omitempty"`
	Ticket      *ticket.Ticket `json:"ticket,omitempty"`
	CallsServed uint32         `json:"calls_served,omitempty"`
	Alert       bool           `json:"alert"`
	At          time.Time      `json:"at"`
}

// Totals are lifetime counters across every session.
type Totals struct {
	Sessions  uint64                  `json:"sessions"`
	Submitted map[ticket.Class]uint64 `json:"submitted"`
	Rejected  map[ticket.Class]uint64 `json:"rejected"`
	Served    map[ticket.Class]uint64 `json:"served"`
}

func newTotals() Totals {
	return Totals{
		Submitted: make(map[ticket.Class]uint64),
		Rejected:  make(map[ticket.Class]uint64),
		Served:    make(map[ticket.Class]uint64),
	}
}
