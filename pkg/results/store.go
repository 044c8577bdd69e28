package results

// Summary counts results per state.
type Summary struct {
	Total      int `json:"total"`
	Ready      int `json:"ready"`
	Sent       int `json:"sent"`
	Done       int `json:"done"`
	NoResponse int `json:"no_response"`
	Error      int `json:"error"`
	Diverging  int `json:"diverging"`
}

// Store holds results keyed by index in insertion order.
type Store struct {
	byIndex map[int]*Result
	order   []int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{byIndex: make(map[int]*Result)}
}

// Get returns a copy of the result at index.
func (s *Store) Get(index int) (Result, bool) {
	r, ok := s.byIndex[index]
	if !ok {
		return Result{}, false
	}
	return *r, true
}

// Upsert stores r under index, replacing any previous result in place.
// New indices are appended to the iteration order.
func (s *Store) Upsert(index int, r Result) {
	r.Index = index
	if cur, ok := s.byIndex[index]; ok {
		*cur = r
		return
	}
	s.byIndex[index] = &r
	s.order = append(s.order, index)
}

// Clear removes every result.
func (s *Store) Clear() {
	s.byIndex = make(map[int]*Result)
	s.order = nil
}

// Len returns the number of results.
func (s *Store) Len() int { return len(s.order) }

// All returns copies of every result in insertion order.
func (s *Store) All() []Result {
	out := make([]Result, 0, len(s.order))
	for _, idx := range s.order {
		out = append(out, *s.byIndex[idx])
	}
	return out
}

// Summary counts the stored results per state.
func (s *Store) Summary() Summary {
	var sum Summary
	for _, idx := range s.order {
		r := s.byIndex[idx]
		sum.Total++
		switch r.State {
		case StateReady:
			sum.Ready++
		case StateSent:
			sum.Sent++
		case StateDone:
			sum.Done++
		case StateNoResponse:
			sum.NoResponse++
		case StateError:
			sum.Error++
		}
		if r.Diverges {
			sum.Diverging++
		}
	}
	return sum
}
