// Package arena provides a bump allocator over a growable contiguous store.
//
// Values are addressed by Index rather than by pointer, so growing the
// backing slice never invalidates a reference held elsewhere. Memory is
// reclaimed only in bulk: Rewind moves the bump pointer back to a Mark,
// Reset moves it back to zero. Capacity is retained so that later
// allocations reuse (and overwrite) the discarded slots.
//
// An Arena is not safe for concurrent use.
package arena

import (
	"unsafe"

	"github.com/pkg/errors"
)

// ErrBadMark is returned by Rewind when the mark lies beyond the live region.
var ErrBadMark = errors.New("arena: mark beyond live region")

// Index addresses one slot of an Arena.
type Index int32

// Span addresses a contiguous run of slots.
type Span struct {
	Start Index
	Len   int32
}

// Mark is a saved bump-pointer position.
type Mark int

// Arena is a bump allocator for values of type T.
type Arena[T any] struct {
	items []T
	peak  int
}

// New creates an arena with room for capacity values before it has to grow.
func New[T any](capacity int) *Arena[T] {
	return &Arena[T]{items: make([]T, 0, capacity)}
}

// Alloc stores v and returns its index.
func (a *Arena[T]) Alloc(v T) Index {
	a.items = append(a.items, v)
	a.touch()
	return Index(len(a.items) - 1)
}

// AllocSlice copies vs into consecutive slots.
func (a *Arena[T]) AllocSlice(vs []T) Span {
	start := len(a.items)
	a.items = append(a.items, vs...)
	a.touch()
	return Span{Start: Index(start), Len: int32(len(vs))}
}

// Extend allocates n zeroed consecutive slots.
func (a *Arena[T]) Extend(n int) Span {
	start := len(a.items)
	if cap(a.items)-start >= n {
		a.items = a.items[:start+n]
		clear(a.items[start:])
	} else {
		a.items = append(a.items, make([]T, n)...)
	}
	a.touch()
	return Span{Start: Index(start), Len: int32(n)}
}

// At returns a pointer to the value at i. The pointer is only valid until
// the next allocation, which may move the backing store.
func (a *Arena[T]) At(i Index) *T {
	return &a.items[i]
}

// Slice returns the values of sp. Same validity rules as At.
func (a *Arena[T]) Slice(sp Span) []T {
	return a.items[sp.Start : int(sp.Start)+int(sp.Len)]
}

// Mark returns the current bump-pointer position.
func (a *Arena[T]) Mark() Mark {
	return Mark(len(a.items))
}

// Rewind discards every allocation made after m.
func (a *Arena[T]) Rewind(m Mark) error {
	if int(m) > len(a.items) || m < 0 {
		return errors.Wrapf(ErrBadMark, "rewind to %d with %d live slots", m, len(a.items))
	}
	a.items = a.items[:m]
	return nil
}

// Reset discards every allocation, keeping the backing memory.
func (a *Arena[T]) Reset() {
	a.items = a.items[:0]
}

// Release discards every allocation and drops the backing memory.
func (a *Arena[T]) Release() {
	a.items = nil
	a.peak = 0
}

// Len returns the number of live slots.
func (a *Arena[T]) Len() int {
	return len(a.items)
}

// Bytes returns the size in bytes of the live slots.
func (a *Arena[T]) Bytes() int {
	return len(a.items) * a.elemSize()
}

// Reserved returns the size in bytes of the backing store.
func (a *Arena[T]) Reserved() int {
	return cap(a.items) * a.elemSize()
}

// Peak returns the high-water mark of live slots.
func (a *Arena[T]) Peak() int {
	return a.peak
}

func (a *Arena[T]) touch() {
	if len(a.items) > a.peak {
		a.peak = len(a.items)
	}
}

func (a *Arena[T]) elemSize() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}
