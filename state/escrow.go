// Package state defines the escrow record persisted in the escrow's
// program-owned storage account, together with its fixed-width codec.
//
// The layout is little-endian, field order fixed, no padding and no version
// header. Any field change requires recomputing the fixed width and is a
// breaking change for previously persisted records.
package state

import (
	"bytes"

	bin "github.com/gagliardetto/binary"

	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/errors"
)

// EscrowLen is the exact byte width of a persisted escrow record:
// seed(8) + maker(32) + asset A(32) + asset B(32) + receive amount(8) +
// bump(1).
const EscrowLen = 113

// Escrow is the record written once at creation and never mutated
// afterwards. It is consumed in full by fulfillment or cancellation.
type Escrow struct {
	// Seed disambiguates multiple escrows owned by the same maker and is
	// part of the address-derivation input.
	Seed uint64

	// Maker created the escrow and alone may cancel it.
	Maker escrow.Address

	// AssetA is the asset type deposited by the maker.
	AssetA escrow.Address

	// AssetB is the asset type the maker wants in return.
	AssetB escrow.Address

	// ReceiveAmount is the quantity of asset B required to complete the
	// swap.
	ReceiveAmount uint64

	// Bump is the derivation salt that makes the escrow's own address
	// unaddressable by any private key. It is recomputed at creation and
	// stored for reuse when the program must act as signing authority.
	Bump uint8
}

// Validate ensures the record is valid.
func (e *Escrow) Validate() error {
	if err := e.Maker.Validate(); err != nil {
		return errors.Wrap(err, "maker")
	}
	if err := e.AssetA.Validate(); err != nil {
		return errors.Wrap(err, "asset a")
	}
	if err := e.AssetB.Validate(); err != nil {
		return errors.Wrap(err, "asset b")
	}
	if e.ReceiveAmount == 0 {
		return errors.Wrap(errors.ErrInput, "receive amount is required")
	}
	return nil
}

// Marshal encodes the record into its fixed-width byte layout.
func (e *Escrow) Marshal() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)

	if err := enc.WriteUint64(e.Seed, bin.LE); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := enc.WriteBytes(e.Maker, false); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := enc.WriteBytes(e.AssetA, false); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := enc.WriteBytes(e.AssetB, false); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := enc.WriteUint64(e.ReceiveAmount, bin.LE); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := enc.WriteUint8(e.Bump); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}

	raw := buf.Bytes()
	if len(raw) != EscrowLen {
		return nil, errors.Wrapf(errors.ErrHuman, "encoded %d bytes, want %d", len(raw), EscrowLen)
	}
	return raw, nil
}

// Unmarshal reconstructs a record from its fixed-width byte layout. The
// buffer length must equal EscrowLen exactly.
func Unmarshal(raw []byte) (*Escrow, error) {
	if len(raw) != EscrowLen {
		return nil, errors.Wrapf(errors.ErrInvalidDataLength, "escrow record is %d bytes, want %d", len(raw), EscrowLen)
	}

	dec := bin.NewBinDecoder(raw)
	var e Escrow
	var err error

	if e.Seed, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	maker, err := dec.ReadBytes(escrow.AddressLength)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	e.Maker = escrow.Address(maker)
	assetA, err := dec.ReadBytes(escrow.AddressLength)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	e.AssetA = escrow.Address(assetA)
	assetB, err := dec.ReadBytes(escrow.AddressLength)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	e.AssetB = escrow.Address(assetB)
	if e.ReceiveAmount, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	if e.Bump, err = dec.ReadUint8(); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}

	return &e, nil
}
