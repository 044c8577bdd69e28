package events

// ErrorEvent is emitted for failures that are not tied to a sent variant,
// such as an encoding that could not be generated.
type ErrorEvent struct {
	BaseEvent
	Index     int    `json:"index,omitzero"`
	Encoding  string `json:"encoding,omitempty"`
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
	Fatal     bool   `json:"fatal"`
}
