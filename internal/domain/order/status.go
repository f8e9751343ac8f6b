package order

// Status represents an order's lifecycle status
type Status string

const (
	// StatusPending indicates the order awaits payment
	StatusPending Status = "PENDING"
	// StatusPaid indicates payment received, awaiting packing
	StatusPaid Status = "PAID"
	// StatusPacked indicates the order is packed, awaiting dispatch
	StatusPacked Status = "PACKED"
	// StatusShipped indicates the order was dispatched
	StatusShipped Status = "SHIPPED"
	// StatusCompleted indicates the order finished normally (terminal)
	StatusCompleted Status = "COMPLETED"
	// StatusCancelled indicates the order was cancelled (terminal)
	StatusCancelled Status = "CANCELLED"
)

// IsValid returns true if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusPacked, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for terminal states
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to the target
// status. Cancellation is reachable from any non-terminal state;
// everything else moves strictly forward.
func (s Status) CanTransitionTo(target Status) bool {
	if !target.IsValid() {
		return false
	}
	if target == StatusCancelled {
		return !s.IsTerminal()
	}
	switch s {
	case StatusPending:
		return target == StatusPaid
	case StatusPaid:
		return target == StatusPacked
	case StatusPacked:
		return target == StatusShipped
	case StatusShipped:
		return target == StatusCompleted
	case StatusCompleted, StatusCancelled:
		return false // Terminal states
	}
	return false
}
