package errors

import "fmt"

var (
	ErrNotAMember        = fmt.Errorf("user is not a member of the chat")
	ErrUnknownChat       = fmt.Errorf("chat does not exist")
	ErrUnknownMessage    = fmt.Errorf("message does not exist")
	ErrStatusNotTracked  = fmt.Errorf("no delivery status tracked for this message and subject")
	ErrUnknownAttachment = fmt.Errorf("attachment reference does not resolve")
	ErrInvalidStatus     = fmt.Errorf("unknown status value")
	ErrInvalidTopic      = fmt.Errorf("invalid topic")
	ErrWorkerPanic       = fmt.Errorf("worker panic")

	// Fan-out drop reasons. A session that does not accept an event within
	// the sink timeout is dropped with ErrPublishTimeout; any other sink
	// failure is reported as ErrSessionGone.
	ErrPublishTimeout = fmt.Errorf("session did not accept the event in time")
	ErrSessionGone    = fmt.Errorf("session sink is gone")
)

// PersistenceError wraps a durable-store failure. The operation it aborted
// applied nothing and is safe to retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
