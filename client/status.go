package client

// Status is the provider-reported state of a verification session.
type Status string

// Recognized verification statuses.
const (
	StatusStarted  Status = "started"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusFailed   Status = "failed"
	StatusExpired  Status = "expired"

	// StatusUnknown is the fallback for any wire value outside the
	// recognized set, so new provider statuses never break parsing.
	StatusUnknown Status = "unknown"
)

// ParseStatus maps a wire value onto the closed status set.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusStarted, StatusPending, StatusApproved, StatusFailed, StatusExpired:
		return Status(s)
	default:
		return StatusUnknown
	}
}

// IsTerminal reports whether the session can no longer change state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusFailed, StatusExpired:
		return true
	}
	return false
}

// IsSuccess reports whether the user passed verification.
// Approved is the sole success status.
func (s Status) IsSuccess() bool {
	return s == StatusApproved
}
