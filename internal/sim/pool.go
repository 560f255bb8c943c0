package sim

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
)

// FramePool recycles position buffers used for keyframes.
type FramePool struct {
	pool sync.Pool
	size int
}

func NewFramePool(size int) *FramePool {
	return &FramePool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]r2.Vec, 0, size)
				return &buf
			},
		},
	}
}

// Get returns an empty buffer with room for at least size positions.
func (p *FramePool) Get() []r2.Vec {
	return (*p.pool.Get().(*[]r2.Vec))[:0]
}

// Put returns buf to the pool. Buffers smaller than the pool size are
// dropped.
func (p *FramePool) Put(buf []r2.Vec) {
	if cap(buf) < p.size {
		return
	}
	buf = buf[:0]
	p.pool.Put(&buf)
}

// Snapshot copies src into a pooled buffer.
func (p *FramePool) Snapshot(src []r2.Vec) []r2.Vec {
	return append(p.Get(), src...)
}
