package ticket

import "fmt"

// CodeSpace is how many distinct numbers fit in the three display digits.
const CodeSpace = 999

// Letter returns the display prefix for the class.
func (c Class) Letter() byte {
	if c == ClassPriority {
		return 'A'
	}
	return 'B'
}

func (c Class) Valid() bool {
	return c == ClassCommon || c == ClassPriority
}

func (c Class) String() string {
	return string(c)
}

// ClassForLetter is the inverse of Letter. Like Letter, anything that is
// not the priority letter means common.
func ClassForLetter(letter byte) Class {
	if letter == ClassPriority.Letter() {
		return ClassPriority
	}
	return ClassCommon
}

// Number is the three-digit part of the code. Sequences past 999 wrap to
// 001; the sequence itself never repeats.
func (t Ticket) Number() uint32 {
	if t.Sequence == 0 {
		return 0
	}
	return (t.Sequence-1)%CodeSpace + 1
}

// Code renders the ticket as a letter followed by three digits.
func (t Ticket) Code() string {
	return fmt.Sprintf("%c%03d", t.Class.Letter(), t.Number())
}

func (t Ticket) String() string {
	return t.Code()
}
