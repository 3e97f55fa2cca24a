package reconcile

// Outcome statuses
const (
	StatusRecorded  = "recorded"
	StatusDuplicate = "duplicate"
	StatusFailed    = "failed"
	StatusTimedOut  = "timed_out"
)

// Outcome describes what a callback did to the stored state.
type Outcome struct {
	Status     string
	Reference  string
	ResultCode int
	ResultDesc string
}

// Duplicate reports whether the callback had already been applied.
func (o *Outcome) Duplicate() bool {
	return o.Status == StatusDuplicate
}
