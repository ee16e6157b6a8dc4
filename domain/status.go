package domain

import "fmt"

// Status is the tri-state delivery progress tracked per message per recipient.
// The integer values define a total order: Sent < Delivered < Read.
// Any wire format must preserve this order, transitions compare numerically.
type Status int

const (
	StatusSent Status = iota
	StatusDelivered
	StatusRead
)

func (s Status) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusDelivered:
		return "delivered"
	case StatusRead:
		return "read"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) Valid() bool {
	return s >= StatusSent && s <= StatusRead
}
