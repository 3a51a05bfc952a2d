package domain

// Status is the lifecycle state of a selling request
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusRejected
}

// Terminal reports whether no further transition is expected from s
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// IsDecision reports whether s can be the target of a buyer decision
func (s Status) IsDecision() bool {
	return s.Terminal()
}

// CanTransition reports whether a request in state from may move to state to.
// Only pending requests move, and only to accepted or rejected.
func CanTransition(from, to Status) bool {
	return from == StatusPending && to.IsDecision()
}
