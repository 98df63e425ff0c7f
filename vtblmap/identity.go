package vtblmap

import (
	"fmt"
	"unsafe"
)

// Identity identifies a runtime type. It is compared and sliced as a raw
// integer and never dereferenced. Zero marks an empty cache slot and is not a
// valid key.
type Identity uintptr

func (id Identity) String() string {
	return fmt.Sprintf("%#x", uintptr(id))
}

// MarshalText renders id in hexadecimal, as String does.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// eface mirrors the runtime layout of an empty interface.
type eface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

// IdentityOf returns the address of the dynamic type descriptor of v, which
// is the same for all values of one type. It returns 0 for a nil interface.
func IdentityOf(v any) Identity {
	return Identity(uintptr((*eface)(unsafe.Pointer(&v)).typ))
}
