// Package ring is a fixed-size single-producer, single-consumer byte ring.
// The producer may run in an interrupt handler; indices are published with
// atomic stores.
package ring

import "sync/atomic"

// Ring holds up to len(buf) bytes. The zero value is unusable; use New.
type Ring struct {
	buf  []byte
	mask uint32
	rd   atomic.Uint32 // consumer index (monotonic)
	wr   atomic.Uint32 // producer index (monotonic)

	dropped atomic.Uint32
}

// New allocates a ring of size bytes; size must be a power of two >= 2.
func New(size int) *Ring {
	if size < 2 || size&(size-1) != 0 {
		panic("ring: size must be power of two >= 2")
	}
	return &Ring{buf: make([]byte, size), mask: uint32(size - 1)}
}

func (r *Ring) size() uint32 { return uint32(len(r.buf)) }

// Space returns the free capacity.
func (r *Ring) Space() int {
	return int(r.size() - (r.wr.Load() - r.rd.Load()))
}

// Available returns the number of unread bytes.
func (r *Ring) Available() int {
	return int(r.wr.Load() - r.rd.Load())
}

// Dropped counts bytes refused by Put because the ring was full.
func (r *Ring) Dropped() uint32 { return r.dropped.Load() }

// Put appends one byte, reporting false (and counting a drop) when full.
func (r *Ring) Put(c byte) bool {
	rd, wr := r.rd.Load(), r.wr.Load()
	if wr-rd == r.size() {
		r.dropped.Add(1)
		return false
	}
	r.buf[wr&r.mask] = c
	r.wr.Store(wr + 1)
	return true
}

// ReadInto copies up to len(dst) unread bytes into dst.
func (r *Ring) ReadInto(dst []byte) (n int) {
	rd, wr := r.rd.Load(), r.wr.Load()
	n = int(wr - rd)
	if len(dst) < n {
		n = len(dst)
	}
	if n == 0 {
		return 0
	}
	idx := rd & r.mask
	first := copy(dst[:n], r.buf[idx:])
	copy(dst[first:n], r.buf)
	r.rd.Store(rd + uint32(n))
	return n
}

// Get removes one byte.
func (r *Ring) Get() (byte, bool) {
	rd, wr := r.rd.Load(), r.wr.Load()
	if rd == wr {
		return 0, false
	}
	c := r.buf[rd&r.mask]
	r.rd.Store(rd + 1)
	return c, true
}
