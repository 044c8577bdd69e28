package bufpool

import (
	"bytes"
	"sync"
	"testing"
)

func TestGet_ReturnsEmptyBuffer(t *testing.T) {
	buf := Get()
	defer Put(buf)
	if buf.Len() != 0 {
		t.Errorf("Expected empty buffer, got len=%d", buf.Len())
	}
}

func TestPut_ResetsBuffer(t *testing.T) {
	buf := Get()
	buf.WriteString("HTTP/1.1 403 Forbidden\r\n\r\n")
	Put(buf)

	// May or may not be the same buffer, but it must be empty.
	buf2 := Get()
	defer Put(buf2)
	if buf2.Len() != 0 {
		t.Error("Buffer from pool not empty after Put")
	}
}

func TestPut_NilAndOversized(t *testing.T) {
	// Should not panic
	Put(nil)
	Put(bytes.NewBuffer(make([]byte, 0, maxPooled+1)))
}

func TestDetach_SurvivesReuse(t *testing.T) {
	buf := Get()
	buf.WriteString("HTTP/1.1 200 OK")
	out := Detach(buf)
	Put(buf)

	buf2 := Get()
	buf2.WriteString("overwritten!!!!")
	defer Put(buf2)

	if string(out) != "HTTP/1.1 200 OK" {
		t.Errorf("Detach() = %q after buffer reuse", out)
	}
	if Detach(Get()) != nil {
		t.Error("Detach of an empty buffer should be nil")
	}
}

func TestConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := Get()
			buf.WriteString("data")
			_ = Detach(buf)
			Put(buf)
		}()
	}
	wg.Wait()
}

func BenchmarkGetPut(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf := Get()
		buf.WriteString("HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n")
		Put(buf)
	}
}
