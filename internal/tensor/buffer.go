package tensor

import (
	"sync"
	"sync/atomic"
)

// buffer is a reference-counted byte buffer shared by every Array view that
// aliases it. Views are cheap: deriving one only increments the count.
type buffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // guards deallocation
}

// newBuffer allocates a zeroed buffer with refCount = 1.
func newBuffer(size int) *buffer {
	buf := &buffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

// addRef increments the reference count (view derivation).
func (b *buffer) addRef() {
	b.refCount.Add(1)
}

// release decrements the reference count and drops the bytes at zero.
func (b *buffer) release() {
	if b.refCount.Add(-1) == 0 {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.data = nil
	}
}

// isUnique reports whether exactly one view references the buffer.
func (b *buffer) isUnique() bool {
	return b.refCount.Load() == 1
}
