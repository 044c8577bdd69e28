package events

// StartEvent is emitted when a run begins.
type StartEvent struct {
	BaseEvent
	Target      string    `json:"target"`
	Mode        string    `json:"mode"` // "encode" or "fuzz"
	Variants    int       `json:"variants"`
	Config      RunConfig `json:"config"`
	TemplateLen int       `json:"template_bytes"`
	BodyLen     int       `json:"body_chars"`
}

// RunConfig contains the settings that shape every variant.
type RunConfig struct {
	ContentType         string   `json:"content_type_template"`
	UpdateContentType   bool     `json:"update_content_type"`
	UpdateContentLength bool     `json:"update_content_length"`
	Encodings           []string `json:"encodings,omitempty"`
	Send                bool     `json:"send"`
	Baseline            bool     `json:"baseline"`
	TLS                 bool     `json:"tls"`
	Proxy               string   `json:"proxy,omitempty"`
	JA3Profile          string   `json:"ja3_profile,omitempty"`
}
