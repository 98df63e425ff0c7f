package orderedbuffer

import (
	"sort"
)

type CompareFunc[T any] func(a, b T) int

// OrderedBoundedBuffer keeps at most maxBufLen values sorted in ascending
// order. When an insertion overflows the bound, the smallest value is evicted.
//
// It is not safe for concurrent use.
type OrderedBoundedBuffer[T any] struct {
	data      []T
	maxBufLen int
	compare   CompareFunc[T]
}

func NewOrderedBoundedBuffer[T any](maxBufLen int, cmp CompareFunc[T]) *OrderedBoundedBuffer[T] {
	if maxBufLen <= 0 {
		panic("maxBufLen should be greater than 0")
	}
	return &OrderedBoundedBuffer[T]{
		data:      make([]T, 0, maxBufLen+1),
		maxBufLen: maxBufLen,
		compare:   cmp,
	}
}

// Insert places val at its ordered position. Equal values keep insertion
// order. If the buffer overflows, the front value is evicted and returned.
func (b *OrderedBoundedBuffer[T]) Insert(val T) (evicted T, ok bool) {
	idx := sort.Search(len(b.data), func(i int) bool {
		return b.compare(val, b.data[i]) < 0
	})

	b.data = append(b.data, val)
	copy(b.data[idx+1:], b.data[idx:])
	b.data[idx] = val

	if len(b.data) > b.maxBufLen {
		evicted = b.data[0]
		copy(b.data, b.data[1:])
		b.data = b.data[:len(b.data)-1]
		return evicted, true
	}
	return evicted, false
}

func (b *OrderedBoundedBuffer[T]) Len() int {
	return len(b.data)
}

// Ascending returns a copy of the buffered values, smallest first.
func (b *OrderedBoundedBuffer[T]) Ascending() []T {
	out := make([]T, len(b.data))
	copy(out, b.data)
	return out
}

// Descending returns a copy of the buffered values, largest first.
func (b *OrderedBoundedBuffer[T]) Descending() []T {
	out := make([]T, len(b.data))
	for i, v := range b.data {
		out[len(b.data)-1-i] = v
	}
	return out
}
