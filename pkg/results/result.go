// Package results tracks the lifecycle of sent variants.
//
// A Store keeps results ordered by insertion (catalog order) with O(1)
// lookup by index. It is not safe for concurrent use; an Owner holds the
// only Store of a session and applies updates posted to it from any
// goroutine on a single loop.
package results

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/waftester/wafcharset/pkg/fuzz"
	"github.com/waftester/wafcharset/pkg/transport"
)

// State is the lifecycle stage of a result.
type State int

const (
	StateReady State = iota
	StateSent
	StateDone
	StateNoResponse
	StateError
)

var stateNames = [...]string{
	StateReady:      "Ready",
	StateSent:       "Sent",
	StateDone:       "Done",
	StateNoResponse: "No Response",
	StateError:      "Error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText renders the state name in JSON and CSV output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transition is expected.
func (s State) Terminal() bool {
	return s == StateDone || s == StateNoResponse || s == StateError
}

// Result is the tracked state of one variant.
type Result struct {
	Index          int           `json:"index"`
	Variant        fuzz.Variant  `json:"-"`
	State          State         `json:"state"`
	StatusCode     int           `json:"status,omitzero"` // 0 = no status
	ResponseLength int           `json:"response_length"`
	Elapsed        time.Duration `json:"-"`
	Error          string        `json:"error,omitempty"`
	Response       []byte        `json:"-"`
	ResponseHash   uint32        `json:"response_hash,omitzero"`
	Diverges       bool          `json:"diverges,omitzero"`
}

// NewReady returns the initial result for a freshly built variant.
func NewReady(v fuzz.Variant) Result {
	return Result{Index: v.Index, Variant: v, State: StateReady}
}

// ElapsedMS is the send latency in whole milliseconds.
func (r Result) ElapsedMS() int64 { return r.Elapsed.Milliseconds() }

// StatusText renders the status code, or "-" when there is none.
func (r Result) StatusText() string {
	if r.StatusCode > 0 {
		return strconv.Itoa(r.StatusCode)
	}
	return "-"
}

// HashBody hashes the response body (everything after the header block).
// Header bytes are excluded because Date and similar headers change on
// every response.
func HashBody(resp []byte) uint32 {
	if len(resp) == 0 {
		return 0
	}
	_, body := transport.SplitResponse(resp)
	return murmur3.Sum32(body)
}

// DivergesFrom reports whether r answered differently than baseline: both
// must be Done, and either the status or the body hash differs.
func (r Result) DivergesFrom(baseline Result) bool {
	if r.State != StateDone || baseline.State != StateDone {
		return false
	}
	return r.StatusCode != baseline.StatusCode || r.ResponseHash != baseline.ResponseHash
}
