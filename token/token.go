// Package token implements the asset-transfer service: asset-type
// descriptors, holding accounts deterministically tied to an
// (owner, asset) pair, and the transfers between them.
//
// The service operates on the in-flight account views of a single
// operation. It never touches the backing store, so the hosting
// environment's commit-or-discard decision covers its effects too.
package token

import (
	"bytes"

	bin "github.com/gagliardetto/binary"

	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/errors"
)

const (
	// MintLen is the byte width of an asset-type descriptor:
	// authority(32) + supply(8) + decimals(1).
	MintLen = 41

	// HoldingLen is the byte width of a holding account:
	// owner(32) + asset(32) + amount(8).
	HoldingLen = 72
)

// Mint is an asset-type descriptor. One exists per fungible asset kind.
type Mint struct {
	Authority escrow.Address
	Supply    uint64
	Decimals  uint8
}

// Holding is the custody record for a single (owner, asset) pair.
type Holding struct {
	Owner  escrow.Address
	Asset  escrow.Address
	Amount uint64
}

// MarshalMint encodes an asset-type descriptor.
func MarshalMint(m *Mint) ([]byte, error) {
	if err := m.Authority.Validate(); err != nil {
		return nil, errors.Wrap(err, "authority")
	}
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteBytes(m.Authority, false); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := enc.WriteUint64(m.Supply, bin.LE); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := enc.WriteUint8(m.Decimals); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return buf.Bytes(), nil
}

// UnmarshalMint decodes an asset-type descriptor from exact-width data.
func UnmarshalMint(raw []byte) (*Mint, error) {
	if len(raw) != MintLen {
		return nil, errors.Wrapf(errors.ErrInvalidDataLength, "mint is %d bytes, want %d", len(raw), MintLen)
	}
	dec := bin.NewBinDecoder(raw)
	var m Mint
	authority, err := dec.ReadBytes(escrow.AddressLength)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	m.Authority = escrow.Address(authority)
	if m.Supply, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	if m.Decimals, err = dec.ReadUint8(); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	return &m, nil
}

// MarshalHolding encodes a holding record.
func MarshalHolding(h *Holding) ([]byte, error) {
	if err := h.Owner.Validate(); err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	if err := h.Asset.Validate(); err != nil {
		return nil, errors.Wrap(err, "asset")
	}
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteBytes(h.Owner, false); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := enc.WriteBytes(h.Asset, false); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := enc.WriteUint64(h.Amount, bin.LE); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return buf.Bytes(), nil
}

// UnmarshalHolding decodes a holding record from exact-width data.
func UnmarshalHolding(raw []byte) (*Holding, error) {
	if len(raw) != HoldingLen {
		return nil, errors.Wrapf(errors.ErrInvalidDataLength, "holding is %d bytes, want %d", len(raw), HoldingLen)
	}
	dec := bin.NewBinDecoder(raw)
	var h Holding
	owner, err := dec.ReadBytes(escrow.AddressLength)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	h.Owner = escrow.Address(owner)
	asset, err := dec.ReadBytes(escrow.AddressLength)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	h.Asset = escrow.Address(asset)
	if h.Amount, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	return &h, nil
}
