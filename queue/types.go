package queue

import (
	"errors"
	"fmt"

	"callboard/ticket"
)

// ErrQueueFull is returned by Push when the queue is at capacity.
var ErrQueueFull = errors.New("queue full")

// DefaultCapacity is the per-class limit used when none is configured.
const DefaultCapacity = 500

// QueueFullError carries which queue rejected the ticket.
type QueueFullError struct {
	Class    ticket.Class
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("%s queue is full (limit is %d)", e.Class, e.Capacity)
}

func (e *QueueFullError) Is(target error) bool {
	return target == ErrQueueFull
}
