// Package bufpool pools the read buffers of raw sends. A sweep reads one
// response per variant; pooled buffers keep that from allocating afresh.
package bufpool

import (
	"bytes"
	"sync"

	"github.com/waftester/wafcharset/pkg/defaults"
)

// maxPooled caps what goes back into a pool. A response near
// defaults.MaxResponseSize would otherwise stay pinned after one large read.
const maxPooled = 256 * 1024

var responses = sync.Pool{
	New: func() any { return bytes.NewBuffer(make([]byte, 0, defaults.BufferSmall)) },
}

// Get returns an empty buffer. Return it with Put.
func Get() *bytes.Buffer {
	buf := responses.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// Put returns buf to the pool. Nil and oversized buffers are dropped.
func Put(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooled {
		return
	}
	buf.Reset()
	responses.Put(buf)
}

// Detach copies the contents of buf so buf can go back to the pool.
// An empty buffer detaches to nil.
func Detach(buf *bytes.Buffer) []byte {
	if buf.Len() == 0 {
		return nil
	}
	return bytes.Clone(buf.Bytes())
}
