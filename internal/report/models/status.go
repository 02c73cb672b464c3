package models

// LostStatus is the lifecycle of a lost report.
type LostStatus string

const (
	StatusLost     LostStatus = "LOST"
	StatusMatched  LostStatus = "MATCHED"
	StatusReturned LostStatus = "RETURNED"
)

// CanTransitionTo enumerates the legal lost-report transitions. MATCHED is
// advisory, not terminal: the owner can still mark the document recovered.
// RETURNED is terminal.
func (s LostStatus) CanTransitionTo(target LostStatus) bool {
	switch s {
	case StatusLost:
		return target == StatusMatched || target == StatusReturned
	case StatusMatched:
		return target == StatusReturned
	case StatusReturned:
		return false
	default:
		return false
	}
}

func (s LostStatus) IsValid() bool {
	switch s {
	case StatusLost, StatusMatched, StatusReturned:
		return true
	default:
		return false
	}
}

// FoundStatus is the lifecycle of a found report.
type FoundStatus string

const (
	FoundAvailable FoundStatus = "AVAILABLE"
	FoundMatched   FoundStatus = "MATCHED"
)

func (s FoundStatus) CanTransitionTo(target FoundStatus) bool {
	return s == FoundAvailable && target == FoundMatched
}

func (s FoundStatus) IsValid() bool {
	switch s {
	case FoundAvailable, FoundMatched:
		return true
	default:
		return false
	}
}
