package vtblmap

// entry is the table's boxed storage for one identity. Entries are allocated
// individually and never copied, so a *entry stays valid across insertions.
type entry[T any] struct {
	id    Identity
	hits  uint64
	value T
}

// table is the authoritative, insert-only mapping from identity to value.
type table[T any] struct {
	index   map[Identity]*entry[T]
	entries []*entry[T] // insertion order
}

func newTable[T any](hint int) table[T] {
	return table[T]{
		index:   make(map[Identity]*entry[T], hint),
		entries: make([]*entry[T], 0, hint),
	}
}

func (t *table[T]) find(id Identity) (*entry[T], bool) {
	e, ok := t.index[id]
	return e, ok
}

// insert adds a zero-valued entry for id. The caller guarantees that id is absent.
func (t *table[T]) insert(id Identity) *entry[T] {
	e := &entry[T]{id: id}
	t.index[id] = e
	t.entries = append(t.entries, e)
	return e
}

func (t *table[T]) len() int {
	return len(t.entries)
}

// diff returns the bit positions in which seed and the stored identities do
// not all agree.
func (t *table[T]) diff(seed Identity) uintptr {
	var d uintptr
	prev := uintptr(seed)
	for _, e := range t.entries {
		d |= prev ^ uintptr(e.id)
		prev = uintptr(e.id)
	}
	return d
}
