package domain

// Outcome statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Outcome is the envelope every tool invocation returns.
// Exactly one of Data and Error is meaningful, selected by Status.
type Outcome struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Success wraps data in a success envelope.
func Success(data any) Outcome {
	return Outcome{Status: StatusSuccess, Data: data}
}

// Failure wraps err in an error envelope. Only the message crosses the
// boundary.
func Failure(err error) Outcome {
	return Outcome{Status: StatusError, Error: err.Error()}
}

// IsSuccess returns true for a success envelope.
func (o Outcome) IsSuccess() bool {
	return o.Status == StatusSuccess
}

// Listing is the data payload of a successful list-documents call.
type Listing struct {
	Files []DirectoryEntry `json:"files"`
	Count int              `json:"count"`
}
