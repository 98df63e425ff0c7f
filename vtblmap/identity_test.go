package vtblmap_test

import (
	"testing"

	"github.com/on-the-ground/dispatch_ive_go/vtblmap"

	"github.com/stretchr/testify/assert"
)

type circle struct{ r float64 }
type square struct{ side float64 }

func TestIdentityOf(t *testing.T) {
	t.Run("same type, same identity", func(t *testing.T) {
		assert.Equal(t, vtblmap.IdentityOf(circle{1}), vtblmap.IdentityOf(circle{2}))
		assert.Equal(t, vtblmap.IdentityOf(&circle{1}), vtblmap.IdentityOf(&circle{2}))
	})

	t.Run("distinct types, distinct identities", func(t *testing.T) {
		assert.NotEqual(t, vtblmap.IdentityOf(circle{}), vtblmap.IdentityOf(square{}))
		assert.NotEqual(t, vtblmap.IdentityOf(circle{}), vtblmap.IdentityOf(&circle{}))
		assert.NotEqual(t, vtblmap.IdentityOf(1), vtblmap.IdentityOf(int64(1)))
	})

	t.Run("nil interface is zero", func(t *testing.T) {
		assert.Zero(t, vtblmap.IdentityOf(nil))

		var err error
		assert.Zero(t, vtblmap.IdentityOf(err))
	})

	t.Run("typed nil pointer is not zero", func(t *testing.T) {
		var c *circle
		assert.NotZero(t, vtblmap.IdentityOf(c))
	})
}

func TestIdentityOf_DrivesMap(t *testing.T) {
	m := vtblmap.New[string]()
	shapes := []any{circle{1}, square{2}, circle{3}, &circle{4}, square{5}}
	for _, s := range shapes {
		p := m.Get(vtblmap.IdentityOf(s))
		if *p == "" {
			switch s.(type) {
			case circle:
				*p = "circle"
			case square:
				*p = "square"
			default:
				*p = "other"
			}
		}
	}

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, "circle", *m.Get(vtblmap.IdentityOf(circle{})))
	assert.Equal(t, "square", *m.Get(vtblmap.IdentityOf(square{})))
	assert.Equal(t, "other", *m.Get(vtblmap.IdentityOf(&circle{})))
}

func TestIdentity_String(t *testing.T) {
	assert.Equal(t, "0x1010", vtblmap.Identity(0x1010).String())
}

func TestIdentity_MarshalText(t *testing.T) {
	b, err := vtblmap.Identity(0xc0ffee).MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "0xc0ffee", string(b))
}
