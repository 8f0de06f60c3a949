package ticket

import "fmt"

// Numberer hands out sequence numbers. It is owned by the dispatcher and is
// not safe for concurrent use.
type Numberer struct {
	mode     Numbering
	shared   uint32
	perClass map[Class]uint32
}

func NewNumberer(mode Numbering) (*Numberer, error) {
	switch mode {
	case "":
		mode = NumberingShared
	case NumberingShared, NumberingPerClass:
	default:
		return nil, fmt.Errorf("unknown numbering mode %q", mode)
	}
	return &Numberer{
		mode:     mode,
		perClass: make(map[Class]uint32, len(Classes)),
	}, nil
}

// Peek returns the number Next would hand out for class without consuming it.
func (n *Numberer) Peek(class Class) uint32 {
	if n.mode == NumberingPerClass {
		return n.perClass[class] + 1
	}
	return n.shared + 1
}

// Next consumes and returns the next number for class.
func (n *Numberer) Next(class Class) uint32 {
	if n.mode == NumberingPerClass {
		n.perClass[class]++
		return n.perClass[class]
	}
	n.shared++
	return n.shared
}

func (n *Numberer) Mode() Numbering {
	return n.mode
}
