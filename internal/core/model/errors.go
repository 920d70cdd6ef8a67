package model

import "fmt"

// NotFoundError signals that a referenced entity does not exist: an unknown
// employee, or a departure attempted before any arrival was recorded.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ConflictError signals a write that would violate the ledger's uniqueness
// invariant: a duplicate arrival, a duplicate departure, or a duplicate
// employee email/identifier. The caller must not retry without a state change.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// CapacityError signals that the notification queue rejected a submission
// because it is full. Recording still succeeds; the job is dropped.
type CapacityError struct {
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("notification queue full (capacity %d)", e.Capacity)
}

// TransientDeliveryError wraps a notification send failure that is worth
// retrying, such as a timeout or throttling response.
type TransientDeliveryError struct {
	Err error
}

func (e *TransientDeliveryError) Error() string {
	return fmt.Sprintf("transient delivery failure: %v", e.Err)
}

func (e *TransientDeliveryError) Unwrap() error { return e.Err }

// PermanentDeliveryError wraps a notification send failure that retrying
// cannot fix, such as a rejected recipient address.
type PermanentDeliveryError struct {
	Err error
}

func (e *PermanentDeliveryError) Error() string {
	return fmt.Sprintf("permanent delivery failure: %v", e.Err)
}

func (e *PermanentDeliveryError) Unwrap() error { return e.Err }

// Canonical messages surfaced to API callers. They match what the recorder
// returns for each rejected transition.
const (
	MsgEmployeeNotFound  = "employee not found"
	MsgArrivalRecorded   = "arrival already recorded for today"
	MsgNoArrival         = "no arrival recorded for today"
	MsgDepartureRecorded = "departure already recorded for today"
)
