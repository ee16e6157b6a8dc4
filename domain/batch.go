package domain

import "github.com/google/uuid"

// BatchFailure reports one message that a batch operation could not advance.
// A failed item never aborts the rest of the batch.
type BatchFailure struct {
	MessageID uuid.UUID
	Err       error
}

// BatchResult is the outcome of a batch status advance.
// Moved lists the messages whose status actually changed; items that were
// already at or past the target are silently absorbed and appear in neither
// list.
type BatchResult struct {
	Moved  []uuid.UUID
	Failed []BatchFailure
}
