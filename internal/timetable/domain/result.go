package domain

// Status classifies the outcome of an engine operation.
type Status string

const (
	StatusOK            Status = "ok"
	StatusNotFound      Status = "not_found"
	StatusInvalidFormat Status = "invalid_format"
	StatusConflict      Status = "conflict"
	StatusEmpty         Status = "empty"
)

// Fixed messages shared by the engine and its adapters.
const (
	MessageNoEvents       = "No events planned"
	MessageNoEventsOnDate = "No events on this specific date in the timetable"
	MessageSlotsAdded     = "Successfully added slot(s)"
	MessageValidDate      = "Valid date"
)

// Result is the tagged outcome returned by every engine operation.
// Callers branch on Status; Message is meant for humans and agents.
type Result struct {
	Status    Status      `json:"status"`
	Message   string      `json:"message"`
	Slots     []Slot      `json:"slots,omitempty"`
	Conflicts []Candidate `json:"conflicts,omitempty"`
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Status == StatusOK }

// Ok builds a successful result.
func Ok(message string) Result {
	return Result{Status: StatusOK, Message: message}
}

// Fail builds an unsuccessful result with the given status.
func Fail(status Status, message string) Result {
	return Result{Status: status, Message: message}
}
