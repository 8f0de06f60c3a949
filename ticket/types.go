package ticket

import "time"

// Class is the service class a ticket is issued under.
type Class string

const (
	ClassCommon   Class = "common"
	ClassPriority Class = "priority"
)

// Classes lists every class in display order.
var Classes = []Class{ClassPriority, ClassCommon}

// Ticket is one unit of work waiting to be called.
type Ticket struct {
	Class    Class     `json:"class"`
	Sequence uint32    `json:"sequence"`
	IssuedAt time.Time `json:"issued_at"`
}

// Numbering selects how sequence numbers are shared between classes.
type Numbering string

const (
	NumberingShared   Numbering = "shared"
	NumberingPerClass Numbering = "per_class"
)
