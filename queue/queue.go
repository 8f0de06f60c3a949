package queue

import (
	"callboard/ticket"
)

// Queue is a bounded FIFO of tickets for one class, backed by a fixed ring.
// It is not safe for concurrent use; the dispatcher is its only owner.
type Queue struct {
	class    ticket.Class
	elements []ticket.Ticket
	head     int
	size     int
}

// New creates an empty queue holding at most capacity tickets.
func New(class ticket.Class, capacity int) *Queue {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Queue{
		class:    class,
		elements: make([]ticket.Ticket, capacity),
	}
}

// Push adds a ticket at the tail. A full queue is left untouched.
func (q *Queue) Push(t ticket.Ticket) error {
	if q.IsFull() {
		return &QueueFullError{Class: q.class, Capacity: len(q.elements)}
	}

	q.elements[(q.head+q.size)%len(q.elements)] = t
	q.size++
	return nil
}

// PopFront removes and returns the head ticket.
func (q *Queue) PopFront() (ticket.Ticket, bool) {
	if q.size == 0 {
		return ticket.Ticket{}, false
	}

	t := q.elements[q.head]
	q.elements[q.head] = ticket.Ticket{}
	q.head = (q.head + 1) % len(q.elements)
	q.size--
	return t, true
}

// PeekFront returns the head ticket without removing it.
func (q *Queue) PeekFront() (ticket.Ticket, bool) {
	if q.size == 0 {
		return ticket.Ticket{}, false
	}
	return q.elements[q.head], true
}

// Len returns the current number of tickets in the queue
func (q *Queue) Len() int {
	return q.size
}

// Cap returns the fixed capacity
func (q *Queue) Cap() int {
	return len(q.elements)
}

// IsEmpty checks if the queue is empty
func (q *Queue) IsEmpty() bool {
	return q.size == 0
}

// IsFull checks if another Push would be rejected
func (q *Queue) IsFull() bool {
	return q.size == len(q.elements)
}

func (q *Queue) Class() ticket.Class {
	return q.class
}

// Codes returns the display code of every waiting ticket, head first
func (q *Queue) Codes() []string {
	codes := make([]string, 0, q.size)
	for i := 0; i < q.size; i++ {
		codes = append(codes, q.elements[(q.head+i)%len(q.elements)].Code())
	}
	return codes
}

// HasNumber reports whether a waiting ticket shows number n.
func (q *Queue) HasNumber(n uint32) bool {
	for i := 0; i < q.size; i++ {
		if q.elements[(q.head+i)%len(q.elements)].Number() == n {
			return true
		}
	}
	return false
}

// Clear removes all tickets from the queue
func (q *Queue) Clear() {
	for i := range q.elements {
		q.elements[i] = ticket.Ticket{}
	}
	q.head = 0
	q.size = 0
}
