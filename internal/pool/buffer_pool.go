// Package pool provides pooled scratch buffers for building compression frames.
package pool

import (
	"sync"
)

const (
	// FrameBufferDefaultSize is the initial capacity of a pooled frame buffer.
	FrameBufferDefaultSize = 64 * 1024 // 64KiB
	// FrameBufferMaxThreshold is the largest capacity returned to the pool.
	FrameBufferMaxThreshold = 8 * 1024 * 1024 // 8MiB
)

// ByteBuffer is a growable byte slice implementing io.Writer.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified capacity.
func NewByteBuffer(size int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, size)}
}

// Bytes returns the buffered bytes. They are only valid until the buffer is reused.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Clone returns a copy of the buffered bytes that outlives the buffer.
func (bb *ByteBuffer) Clone() []byte {
	out := make([]byte, len(bb.B))
	copy(out, bb.B)

	return out
}

// Reset empties the buffer but keeps its memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the number of buffered bytes.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Grow ensures room for n more bytes without another allocation.
//
// Small buffers grow by FrameBufferDefaultSize, larger ones by 25% of their capacity.
func (bb *ByteBuffer) Grow(n int) {
	if cap(bb.B)-len(bb.B) >= n {
		return
	}

	growBy := FrameBufferDefaultSize
	if cap(bb.B) > 4*FrameBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	growBy = max(growBy, n)

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends data to the buffer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.Grow(len(data))
	bb.B = append(bb.B, data...)

	return len(data), nil
}

// WriteString appends s to the buffer.
func (bb *ByteBuffer) WriteString(s string) (int, error) {
	bb.Grow(len(s))
	bb.B = append(bb.B, s...)

	return len(s), nil
}

// ByteBufferPool is a pool of ByteBuffers that drops buffers above a size threshold.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool of buffers with the given initial capacity.
// A positive maxThreshold keeps larger buffers out of the pool.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves an empty ByteBuffer from the pool.
func (p *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns bb to the pool for reuse.
func (p *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}

	bb.Reset()
	p.pool.Put(bb)
}

var framePool = NewByteBufferPool(FrameBufferDefaultSize, FrameBufferMaxThreshold)

// GetFrameBuffer retrieves a buffer from the shared frame pool.
func GetFrameBuffer() *ByteBuffer {
	return framePool.Get()
}

// PutFrameBuffer returns a buffer to the shared frame pool.
func PutFrameBuffer(bb *ByteBuffer) {
	framePool.Put(bb)
}
