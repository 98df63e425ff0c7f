package purefn

import "github.com/on-the-ground/dispatch_ive_go/vtblmap"

// NoMatch is returned by a FirstMatch matcher when no case accepts the value.
const NoMatch = -1

// FirstMatch returns a matcher yielding the index of the first case that
// accepts its argument, or NoMatch. Cases must decide on the dynamic type of
// the value alone, as type assertions do: each type is tried against the
// cases once.
func FirstMatch[I any](cases []func(I) bool, opts ...vtblmap.Option) func(I) int {
	m := vtblmap.New[int](opts...)
	// first returns len(cases) when nothing matches
	first := func(v I) int {
		for i, c := range cases {
			if c(v) {
				return i
			}
		}
		return len(cases)
	}
	resolve := func(i int) int {
		if i == len(cases) {
			return NoMatch
		}
		return i
	}
	return func(v I) int {
		id := vtblmap.IdentityOf(v)
		if id == 0 {
			return resolve(first(v))
		}
		// index+1, so that zero means not computed yet
		idx := m.Get(id)
		if *idx == 0 {
			*idx = first(v) + 1
		}
		return resolve(*idx - 1)
	}
}
