package booking

import "fmt"

// PersistenceError wraps a record-store failure during save. The flow keeps
// the collected slots and stays in Confirming so the user can retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("booking: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotificationError wraps a confirmation-delivery failure. It never fails a
// booking; it only softens the user-facing confirmation message.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("booking: send confirmation: %v", e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
