package codec

import (
	"bytes"
	"sync"
)

// ObjectPool provides pooling for objects to reduce allocations.
// Uses sync.Pool for efficient memory reuse.
type ObjectPool[T any] struct {
	pool *sync.Pool
	new  func() T
}

// NewObjectPool creates a new object pool with a constructor function.
func NewObjectPool[T any](new func() T) *ObjectPool[T] {
	if new == nil {
		panic("new function cannot be nil")
	}

	pool := &ObjectPool[T]{
		new: new,
	}

	pool.pool = &sync.Pool{
		New: func() interface{} {
			return pool.new()
		},
	}

	return pool
}

// Get retrieves an object from the pool, constructing one if the pool is empty.
func (p *ObjectPool[T]) Get() T {
	if p == nil || p.pool == nil {
		panic("cannot get from nil pool")
	}

	return p.pool.Get().(T)
}

// Put returns an object to the pool for reuse.
// Callers are responsible for resetting the object.
func (p *ObjectPool[T]) Put(obj T) {
	if p == nil || p.pool == nil {
		return
	}
	p.pool.Put(obj)
}

// BufferPool pools encode buffers. Buffers that grew past maxRetained are
// dropped instead of returned, so one huge group cannot pin memory.
type BufferPool struct {
	pool        *ObjectPool[*bytes.Buffer]
	maxRetained int
}

// NewBufferPool creates a buffer pool whose buffers start with initial
// capacity and are retained up to maxRetained bytes.
func NewBufferPool(initial, maxRetained int) *BufferPool {
	if initial <= 0 {
		initial = 256
	}
	if maxRetained < initial {
		maxRetained = initial
	}
	return &BufferPool{
		pool: NewObjectPool(func() *bytes.Buffer {
			return bytes.NewBuffer(make([]byte, 0, initial))
		}),
		maxRetained: maxRetained,
	}
}

// Get retrieves an empty buffer.
func (bp *BufferPool) Get() *bytes.Buffer {
	if bp == nil || bp.pool == nil {
		return new(bytes.Buffer)
	}
	buf := bp.pool.Get()
	buf.Reset()
	return buf
}

// Put returns a buffer to the pool. The caller must not use buf afterwards.
func (bp *BufferPool) Put(buf *bytes.Buffer) {
	if bp == nil || bp.pool == nil || buf == nil {
		return
	}
	if buf.Cap() > bp.maxRetained {
		return
	}
	buf.Reset()
	bp.pool.Put(buf)
}

// encodeBuffers backs Encode. A single order encodes to well under 256 bytes.
var encodeBuffers = NewBufferPool(256, 64*1024)
