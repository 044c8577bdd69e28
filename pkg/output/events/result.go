package events

// ResultEvent is emitted whenever a variant changes state.
type ResultEvent struct {
	BaseEvent
	Target string     `json:"target,omitempty"`
	Result ResultInfo `json:"result"`
}

// ResultInfo is one row of the result table.
type ResultInfo struct {
	Index          int     `json:"index"`
	Encoding       string  `json:"encoding"`
	Family         string  `json:"family,omitempty"`
	ContentType    string  `json:"content_type"`
	State          string  `json:"state"`
	StatusCode     int     `json:"status,omitzero"`
	RequestLength  int     `json:"request_length"`
	BodyLength     int     `json:"body_length"`
	ResponseLength int     `json:"response_length"`
	LatencyMs      float64 `json:"elapsed_ms"`
	Error          string  `json:"error,omitempty"`
	ResponseHash   uint32  `json:"response_hash,omitzero"`
	Diverges       bool    `json:"diverges,omitzero"`
}

// Final reports whether the row is in a terminal state.
func (r ResultInfo) Final() bool {
	switch r.State {
	case "Done", "No Response", "Error":
		return true
	}
	return false
}
