package host

import (
	"github.com/gagliardetto/solana-go"

	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/errors"
)

// Deriver implements the address-derivation service. Derived addresses are
// guaranteed to have no corresponding private key: candidates that fall on
// the signing curve are rejected and the bump is decremented until an
// off-curve address is found.
type Deriver struct{}

var _ escrow.AddressDeriver = Deriver{}

// Derive finds the bump for which the seed list derives to a valid keyless
// address under the program identity.
func (Deriver) Derive(seeds [][]byte, program escrow.Address) (escrow.Address, uint8, error) {
	if err := program.Validate(); err != nil {
		return nil, 0, errors.Wrap(err, "program")
	}
	addr, bump, err := solana.FindProgramAddress(seeds, solana.PublicKeyFromBytes(program))
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrInvalidDerivedAddress, err.Error())
	}
	return escrow.Address(addr.Bytes()), bump, nil
}

// DeriveWithBump recomputes the address for a known bump.
func (Deriver) DeriveWithBump(seeds [][]byte, bump uint8, program escrow.Address) (escrow.Address, error) {
	if err := program.Validate(); err != nil {
		return nil, errors.Wrap(err, "program")
	}
	full := make([][]byte, 0, len(seeds)+1)
	full = append(full, seeds...)
	full = append(full, []byte{bump})
	addr, err := solana.CreateProgramAddress(full, solana.PublicKeyFromBytes(program))
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDerivedAddress, err.Error())
	}
	return escrow.Address(addr.Bytes()), nil
}
