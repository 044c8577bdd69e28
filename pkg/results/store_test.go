package results

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waftester/wafcharset/pkg/charset"
	"github.com/waftester/wafcharset/pkg/fuzz"
)

func variant(index int) fuzz.Variant {
	return fuzz.Variant{Index: index, Spec: charset.Catalog()[index-1], ContentType: "text/plain"}
}

func TestStore_UpsertKeepsInsertionOrder(t *testing.T) {
	s := NewStore()
	for _, idx := range []int{1, 2, 4, 5} {
		s.Upsert(idx, NewReady(variant(idx)))
	}
	s.Upsert(2, Result{State: StateDone, StatusCode: 200})

	all := s.All()
	require.Len(t, all, 4)
	assert.Equal(t, []int{1, 2, 4, 5}, []int{all[0].Index, all[1].Index, all[2].Index, all[3].Index})
	assert.Equal(t, StateDone, all[1].State)
	assert.Equal(t, 4, s.Len())

	r, ok := s.Get(2)
	require.True(t, ok)
	assert.Equal(t, 200, r.StatusCode)
	assert.Equal(t, 2, r.Index)

	_, ok = s.Get(3)
	assert.False(t, ok)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := NewStore()
	s.Upsert(1, NewReady(variant(1)))

	r, _ := s.Get(1)
	r.State = StateError
	all := s.All()
	all[0].StatusCode = 500

	got, _ := s.Get(1)
	assert.Equal(t, StateReady, got.State)
	assert.Equal(t, 0, got.StatusCode)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Upsert(1, NewReady(variant(1)))
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.All())

	s.Upsert(3, NewReady(variant(3)))
	assert.Equal(t, 3, s.All()[0].Index)
}

func TestStore_Summary(t *testing.T) {
	s := NewStore()
	s.Upsert(1, Result{State: StateDone, Diverges: true})
	s.Upsert(2, Result{State: StateError})
	s.Upsert(3, Result{State: StateDone})
	s.Upsert(4, Result{State: StateNoResponse})
	s.Upsert(5, Result{State: StateReady})
	s.Upsert(6, Result{State: StateSent})

	assert.Equal(t, Summary{Total: 6, Ready: 1, Sent: 1, Done: 2, NoResponse: 1, Error: 1, Diverging: 1}, s.Summary())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "Ready", StateReady.String())
	assert.Equal(t, "No Response", StateNoResponse.String())
	assert.Equal(t, "State(9)", State(9).String())

	text, err := StateError.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Error", string(text))

	assert.False(t, StateSent.Terminal())
	assert.True(t, StateNoResponse.Terminal())
}

func TestResult_StatusText(t *testing.T) {
	assert.Equal(t, "-", Result{}.StatusText())
	assert.Equal(t, "403", Result{StatusCode: 403}.StatusText())
	assert.Equal(t, int64(250), Result{Elapsed: 250 * time.Millisecond}.ElapsedMS())
}

func TestHashBody_IgnoresHeaders(t *testing.T) {
	a := HashBody([]byte("HTTP/1.1 200 OK\r\nDate: Mon\r\n\r\nhello"))
	b := HashBody([]byte("HTTP/1.1 200 OK\r\nDate: Tue\r\n\r\nhello"))
	c := HashBody([]byte("HTTP/1.1 200 OK\r\nDate: Tue\r\n\r\nblocked"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, uint32(0), HashBody(nil))
}

func TestResult_DivergesFrom(t *testing.T) {
	base := Result{State: StateDone, StatusCode: 403, ResponseHash: 1}

	assert.False(t, Result{State: StateDone, StatusCode: 403, ResponseHash: 1}.DivergesFrom(base))
	assert.True(t, Result{State: StateDone, StatusCode: 200, ResponseHash: 1}.DivergesFrom(base))
	assert.True(t, Result{State: StateDone, StatusCode: 403, ResponseHash: 2}.DivergesFrom(base))
	assert.False(t, Result{State: StateError}.DivergesFrom(base))
	assert.False(t, Result{State: StateDone, StatusCode: 200}.DivergesFrom(Result{State: StateNoResponse}))
}
