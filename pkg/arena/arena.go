// Package arena provides the bulk allocator the parser allocates every AST
// node from (spec.md §3.2, §5, §9 "Arena-allocated AST"). An Arena holds
// nodes of one type; the parser keeps one Arena per node kind, and all of
// them are released together when the Parser goes out of scope; this gives
// the tree a single,
// well-defined lifetime boundary instead of per-node ownership, mirroring
// original_source/src/arena.hpp's ArenaAllocator translated from a C++
// bump-pointer template to a Go generic type.
package arena

// defaultChunkSize is the number of elements each underlying chunk holds
// before the Arena grows a new one. original_source/src/arena.hpp takes a
// fixed byte capacity at construction ("on the order of a few megabytes",
// spec.md §5); chunked growth gives the same bulk-allocation locality
// without requiring callers to size the arena up front.
const defaultChunkSize = 256

// Arena is a typed bump allocator for T. The zero value is not usable; use
// New. An Arena must not be used concurrently.
type Arena[T any] struct {
	chunks [][]T
	count  int // live elements in the last chunk
}

// New creates an empty Arena for T.
func New[T any]() *Arena[T] {
	a := &Arena[T]{}
	a.grow()
	return a
}

func (a *Arena[T]) grow() {
	a.chunks = append(a.chunks, make([]T, 0, defaultChunkSize))
	a.count = 0
}

// Alloc returns a pointer to a freshly zeroed T owned by the arena. The
// pointer stays valid for the arena's lifetime; it must never be freed
// individually.
func (a *Arena[T]) Alloc() *T {
	last := &a.chunks[len(a.chunks)-1]
	if len(*last) == cap(*last) {
		a.grow()
		last = &a.chunks[len(a.chunks)-1]
	}
	*last = append(*last, *new(T))
	a.count++
	return &(*last)[len(*last)-1]
}

// Len reports the total number of elements allocated so far, across all
// chunks. Used by pkg/driver's --verbose build-stats report.
func (a *Arena[T]) Len() int {
	n := 0
	for _, c := range a.chunks {
		n += len(c)
	}
	return n
}
