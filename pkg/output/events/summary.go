package events

// SummaryEvent is emitted once a run has finished.
type SummaryEvent struct {
	BaseEvent
	Target   string       `json:"target,omitempty"`
	Totals   SummaryTotal `json:"totals"`
	Duration float64      `json:"duration_sec"`
}

// SummaryTotal counts variants per state.
type SummaryTotal struct {
	Variants   int `json:"variants"`
	Failed     int `json:"generation_failed"`
	Ready      int `json:"ready"`
	Done       int `json:"done"`
	NoResponse int `json:"no_response"`
	Errors     int `json:"errors"`
	Diverging  int `json:"diverging"`
}
