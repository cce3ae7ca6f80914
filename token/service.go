package token

import (
	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/errors"
)

// Service implements escrow.TokenMover. The service identity (ProgramID)
// is what owns every mint and holding account it manages.
type Service struct {
	ProgramID escrow.Address
	Derive    escrow.AddressDeriver
	Lifecycle escrow.AccountLifecycle
}

var _ escrow.TokenMover = Service{}

// HoldingAddress returns the derived address deterministically tied to the
// (owner, asset) pair. No private key exists for it; only the owner's
// signature (or a signing context deriving to the owner) can move funds
// out of it.
func (s Service) HoldingAddress(owner, asset escrow.Address) (escrow.Address, uint8, error) {
	return s.Derive.Derive([][]byte{owner, asset}, s.ProgramID)
}

// CheckAssetType fails unless the account is a genuine asset-type
// descriptor owned by this service.
func (s Service) CheckAssetType(acct *escrow.Account) error {
	if !acct.OwnedBy(s.ProgramID) {
		return errors.Wrapf(errors.ErrInvalidAssetType, "%s is not owned by the asset program", acct.Address)
	}
	if _, err := UnmarshalMint(acct.Data); err != nil {
		return errors.Wrapf(errors.ErrInvalidAssetType, "%s does not hold a descriptor", acct.Address)
	}
	return nil
}

// CheckHolding fails unless the account is the holding account for the
// (owner, asset) pair.
func (s Service) CheckHolding(acct *escrow.Account, owner, asset escrow.Address) error {
	if !acct.OwnedBy(s.ProgramID) {
		return errors.Wrapf(errors.ErrInvalidOwner, "%s is not owned by the asset program", acct.Address)
	}
	h, err := UnmarshalHolding(acct.Data)
	if err != nil {
		return err
	}
	if !h.Owner.Equals(owner) {
		return errors.Wrapf(errors.ErrInvalidOwner, "holding belongs to %s", h.Owner)
	}
	if !h.Asset.Equals(asset) {
		return errors.Wrapf(errors.ErrInvalidAssetType, "holding custodies %s", h.Asset)
	}
	expected, _, err := s.HoldingAddress(owner, asset)
	if err != nil {
		return err
	}
	if !expected.Equals(acct.Address) {
		return errors.Wrapf(errors.ErrInvalidDerivedAddress, "holding for (%s, %s) lives at %s", owner, asset, expected)
	}
	return nil
}

// Balance returns the asset amount held by a holding account.
func (s Service) Balance(acct *escrow.Account) (uint64, error) {
	if !acct.OwnedBy(s.ProgramID) {
		return 0, errors.Wrapf(errors.ErrInvalidOwner, "%s is not owned by the asset program", acct.Address)
	}
	h, err := UnmarshalHolding(acct.Data)
	if err != nil {
		return 0, err
	}
	return h.Amount, nil
}

// Transfer moves amount between two holding accounts of the same asset.
func (s Service) Transfer(from, to *escrow.Account, amount uint64, authority *escrow.Account, seeds *escrow.SignerSeeds) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrInput, "non-positive transfer")
	}
	if from.Address.Equals(to.Address) {
		return errors.Wrap(errors.ErrInput, "transfer to self")
	}
	if !from.OwnedBy(s.ProgramID) || !to.OwnedBy(s.ProgramID) {
		return errors.Wrap(errors.ErrInvalidOwner, "transfer endpoints must be owned by the asset program")
	}

	src, err := UnmarshalHolding(from.Data)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	dst, err := UnmarshalHolding(to.Data)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if !src.Asset.Equals(dst.Asset) {
		return errors.Wrapf(errors.ErrInvalidAssetType, "cannot move %s into a %s holding", src.Asset, dst.Asset)
	}

	if err := s.authorize(src.Owner, authority, seeds); err != nil {
		return err
	}

	if src.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientFunds, "holding %s has %d, need %d", from.Address, src.Amount, amount)
	}
	if dst.Amount+amount < dst.Amount {
		return errors.Wrap(errors.ErrOverflow, "destination amount")
	}

	src.Amount -= amount
	dst.Amount += amount

	if from.Data, err = MarshalHolding(src); err != nil {
		return err
	}
	if to.Data, err = MarshalHolding(dst); err != nil {
		return err
	}
	return nil
}

// InitHolding allocates and initializes the holding account for the
// (owner, asset) pair, funded by the payer.
func (s Service) InitHolding(holding *escrow.Account, owner, asset escrow.Address, payer *escrow.Account) error {
	expected, _, err := s.HoldingAddress(owner, asset)
	if err != nil {
		return err
	}
	if !expected.Equals(holding.Address) {
		return errors.Wrapf(errors.ErrInvalidDerivedAddress, "holding for (%s, %s) lives at %s", owner, asset, expected)
	}
	if err := s.Lifecycle.Open(holding, payer, HoldingLen, s.ProgramID); err != nil {
		return err
	}
	raw, err := MarshalHolding(&Holding{Owner: owner, Asset: asset})
	if err != nil {
		return err
	}
	holding.Data = raw
	return nil
}

// CloseHolding deallocates an emptied holding account and sends its
// reserved native balance to the recipient. Closing a holding that still
// custodies funds is refused.
func (s Service) CloseHolding(holding, recipient *escrow.Account, authority *escrow.Account, seeds *escrow.SignerSeeds) error {
	if !holding.OwnedBy(s.ProgramID) {
		return errors.Wrapf(errors.ErrInvalidOwner, "%s is not owned by the asset program", holding.Address)
	}
	h, err := UnmarshalHolding(holding.Data)
	if err != nil {
		return err
	}
	if h.Amount != 0 {
		return errors.Wrapf(errors.ErrState, "holding still custodies %d", h.Amount)
	}
	if err := s.authorize(h.Owner, authority, seeds); err != nil {
		return err
	}
	return s.Lifecycle.Close(holding, recipient)
}

// InitMint allocates an asset-type descriptor account. It is a host-side
// setup operation, not reachable from the escrow program.
func (s Service) InitMint(mint *escrow.Account, authority escrow.Address, decimals uint8, payer *escrow.Account) error {
	if err := s.Lifecycle.Open(mint, payer, MintLen, s.ProgramID); err != nil {
		return err
	}
	raw, err := MarshalMint(&Mint{Authority: authority, Decimals: decimals})
	if err != nil {
		return err
	}
	mint.Data = raw
	return nil
}

// Issue mints new supply straight into a holding account. The authority
// recorded in the descriptor must sign. Host-side setup operation.
func (s Service) Issue(mint, holding *escrow.Account, amount uint64, authority *escrow.Account) error {
	if err := s.CheckAssetType(mint); err != nil {
		return err
	}
	m, err := UnmarshalMint(mint.Data)
	if err != nil {
		return err
	}
	if !m.Authority.Equals(authority.Address) {
		return errors.Wrapf(errors.ErrUnauthorized, "issuance requires %s", m.Authority)
	}
	if !authority.Signer {
		return errors.Wrapf(errors.ErrInvalidSigner, "%s", authority.Address)
	}

	h, err := UnmarshalHolding(holding.Data)
	if err != nil {
		return err
	}
	if !h.Asset.Equals(mint.Address) {
		return errors.Wrapf(errors.ErrInvalidAssetType, "holding custodies %s", h.Asset)
	}
	if m.Supply+amount < m.Supply || h.Amount+amount < h.Amount {
		return errors.Wrap(errors.ErrOverflow, "supply")
	}
	m.Supply += amount
	h.Amount += amount

	if mint.Data, err = MarshalMint(m); err != nil {
		return err
	}
	if holding.Data, err = MarshalHolding(h); err != nil {
		return err
	}
	return nil
}

// authorize verifies that the authority account is the recorded owner and
// that it either carries a transaction signature or is backed by a signing
// context deriving to its address.
func (s Service) authorize(owner escrow.Address, authority *escrow.Account, seeds *escrow.SignerSeeds) error {
	if !authority.Address.Equals(owner) {
		return errors.Wrapf(errors.ErrUnauthorized, "owned by %s", owner)
	}
	if seeds == nil {
		if !authority.Signer {
			return errors.Wrapf(errors.ErrInvalidSigner, "%s", authority.Address)
		}
		return nil
	}
	derived, err := s.Derive.DeriveWithBump(seeds.Seeds, seeds.Bump, seeds.Program)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidDerivedAddress, err.Error())
	}
	if !derived.Equals(authority.Address) {
		return errors.Wrapf(errors.ErrInvalidDerivedAddress, "signing context derives to %s", derived)
	}
	return nil
}
