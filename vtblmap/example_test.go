package vtblmap_test

import (
	"fmt"
	"math"

	"github.com/on-the-ground/dispatch_ive_go/vtblmap"
)

type triangle struct{ base, height float64 }

func Example() {
	// one cache per dispatch site; the value is the index of the matching case plus one
	m := vtblmap.New[int](vtblmap.WithName("area"))

	area := func(shape any) float64 {
		idx := m.Get(vtblmap.IdentityOf(shape))
		if *idx == 0 {
			switch shape.(type) {
			case circle:
				*idx = 1
			case square:
				*idx = 2
			case triangle:
				*idx = 3
			}
		}
		switch *idx {
		case 1:
			c := shape.(circle)
			return math.Pi * c.r * c.r
		case 2:
			s := shape.(square)
			return s.side * s.side
		case 3:
			t := shape.(triangle)
			return t.base * t.height / 2
		}
		return 0
	}

	for _, s := range []any{square{3}, triangle{4, 5}, square{2}, circle{1}} {
		fmt.Printf("%.2f\n", area(s))
	}
	fmt.Println(m.Len(), "types seen")

	// Output:
	// 9.00
	// 10.00
	// 4.00
	// 3.14
	// 3 types seen
}

func ExampleMap_Report() {
	m := vtblmap.New[string](vtblmap.WithInitialShift(0))
	for _, id := range []vtblmap.Identity{0x1000, 0x1010, 0x1020} {
		m.Get(id)
	}

	r := m.Report()
	fmt.Println("shift:", r.Shift, "log size:", r.LogSize, "updates:", r.Updates)
	for _, s := range r.Identities {
		fmt.Println(s.ID, "->", s.Bucket)
	}

	// Output:
	// shift: 4 log size: 3 updates: 1
	// 0x1000 -> 0
	// 0x1010 -> 1
	// 0x1020 -> 2
}
