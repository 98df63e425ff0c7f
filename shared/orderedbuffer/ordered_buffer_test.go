package orderedbuffer_test

import (
	"slices"
	"testing"

	"github.com/on-the-ground/dispatch_ive_go/shared/orderedbuffer"
	"github.com/stretchr/testify/assert"
)

func TestOrderedBoundedBuffer_InsertAndEviction(t *testing.T) {
	buf := orderedbuffer.NewOrderedBoundedBuffer(3, func(a, b int) int {
		return a - b
	})

	// Insert 5 values, but buffer can only hold 3
	var evicted []int
	for _, v := range []int{10, 5, 7, 3, 8} {
		if e, ok := buf.Insert(v); ok {
			evicted = append(evicted, e)
		}
	}

	assert.Equal(t, []int{3, 5}, evicted)
	assert.Equal(t, 3, buf.Len())

	want := []int{7, 8, 10}
	if got := buf.Ascending(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	assert.Equal(t, []int{10, 8, 7}, buf.Descending())
}

func TestOrderedBoundedBuffer_StableForEqualKeys(t *testing.T) {
	type item struct {
		key  int
		name string
	}
	buf := orderedbuffer.NewOrderedBoundedBuffer(4, func(a, b item) int {
		return a.key - b.key
	})

	buf.Insert(item{1, "a"})
	buf.Insert(item{1, "b"})
	buf.Insert(item{0, "c"})

	got := buf.Ascending()
	assert.Equal(t, []item{{0, "c"}, {1, "a"}, {1, "b"}}, got)
}

func TestOrderedBoundedBuffer_CopiesAreIndependent(t *testing.T) {
	buf := orderedbuffer.NewOrderedBoundedBuffer(2, func(a, b int) int {
		return a - b
	})
	buf.Insert(1)
	buf.Insert(2)

	got := buf.Ascending()
	got[0] = 99
	assert.Equal(t, []int{1, 2}, buf.Ascending())
}

func TestOrderedBoundedBuffer_PanicsOnZeroBound(t *testing.T) {
	assert.Panics(t, func() {
		orderedbuffer.NewOrderedBoundedBuffer(0, func(a, b int) int { return a - b })
	})
}
