package purefn

import "github.com/on-the-ground/dispatch_ive_go/vtblmap"

type memo[O any] struct {
	ok  bool
	out O
}

type result[O1 any, O2 any] struct {
	O1 O1
	O2 O2
}

func TableizeByTypeI1O1[I any, O1 any](
	pureFn func(I) O1,
	opts ...vtblmap.Option,
) func(I) O1 {
	tableized := tableizeByType(pureFn, opts...)
	return func(i1 I) O1 {
		return tableized(i1)
	}
}

func TableizeByTypeI1O2[I any, O1, O2 any](
	pureFn func(I) (O1, O2),
	opts ...vtblmap.Option,
) func(I) (O1, O2) {
	tableized := tableizeByType(
		func(i1 I) result[O1, O2] {
			v1, v2 := pureFn(i1)
			return result[O1, O2]{O1: v1, O2: v2}
		},
		opts...,
	)
	return func(i1 I) (O1, O2) {
		res := tableized(i1)
		return res.O1, res.O2
	}
}

func tableizeByType[I any, O any](
	pureFn func(I) O,
	opts ...vtblmap.Option,
) func(I) O {
	m := vtblmap.New[memo[O]](opts...)
	return func(i1 I) O {
		id := vtblmap.IdentityOf(i1)
		if id == 0 {
			return pureFn(i1)
		}
		e := m.Get(id)
		if !e.ok {
			e.out = pureFn(i1)
			e.ok = true
		}
		return e.out
	}
}
