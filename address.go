package escrow

import (
	"bytes"

	"github.com/btcsuite/btcutil/base58"

	"github.com/blueshift-labs/escrow/errors"
)

// AddressLength is the length in bytes of all ledger addresses.
const AddressLength = 32

// Address identifies a single account on the ledger. Key-pair accounts and
// derived (keyless) accounts share the same address space.
type Address []byte

// Equals checks if two addresses are the same.
func (a Address) Equals(b Address) bool {
	return bytes.Equal(a, b)
}

// Clone returns a copy that shares no memory with the original.
func (a Address) Clone() Address {
	if a == nil {
		return nil
	}
	cp := make(Address, len(a))
	copy(cp, a)
	return cp
}

// Validate returns an error if the address is not the valid size.
func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.Wrapf(errors.ErrInput, "address must be %d bytes, got %d", AddressLength, len(a))
	}
	return nil
}

// String returns the base58 rendering used everywhere addresses are shown
// to a human.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return base58.Encode(a)
}

// ParseAddress decodes a base58 encoded address and validates its length.
func ParseAddress(enc string) (Address, error) {
	raw := base58.Decode(enc)
	a := Address(raw)
	if err := a.Validate(); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot parse %q as an address", enc)
	}
	return a, nil
}
