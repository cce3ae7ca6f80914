package program

import (
	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/errors"
)

// take completes the swap: the taker pays the asked amount of asset B to
// the maker and receives the vault's full asset A balance, then both the
// vault and the record are torn down. Expected account order:
//
//	0. taker           [signer, writable] pays for any holding it is missing
//	1. maker           [writable]         recipient, no signature required
//	2. escrow record   [writable]
//	3. vault           [writable]
//	4. taker holding A [writable]         created if absent, receives deposit
//	5. taker holding B [writable]         source of the payment
//	6. maker holding B [writable]         created if absent, receives payment
func (p *Program) take(accounts []*escrow.Account, payload []byte) error {
	if err := checkNoPayload(payload); err != nil {
		return err
	}
	if len(accounts) != 7 {
		return errors.Wrapf(errors.ErrInput, "fulfill expects 7 accounts, got %d", len(accounts))
	}
	taker, maker, record, vault := accounts[0], accounts[1], accounts[2], accounts[3]
	takerHoldingA, takerHoldingB, makerHoldingB := accounts[4], accounts[5], accounts[6]

	if err := checkSigner(taker); err != nil {
		return errors.Wrap(err, "taker")
	}
	rec, err := p.loadRecord(record)
	if err != nil {
		return err
	}
	if !rec.Maker.Equals(maker.Address) {
		return errors.Wrapf(errors.ErrUnauthorized, "escrow belongs to %s", rec.Maker)
	}
	if err := p.tokens.CheckHolding(vault, record.Address, rec.AssetA); err != nil {
		return errors.Wrap(err, "vault")
	}
	if err := p.tokens.CheckHolding(takerHoldingB, taker.Address, rec.AssetB); err != nil {
		return errors.Wrap(err, "payment source")
	}

	if err := p.initHoldingIfNeeded(takerHoldingA, taker.Address, rec.AssetA, taker); err != nil {
		return errors.Wrap(err, "taker holding")
	}
	if err := p.initHoldingIfNeeded(makerHoldingB, maker.Address, rec.AssetB, taker); err != nil {
		return errors.Wrap(err, "maker holding")
	}

	// The payment leg must succeed before the release leg is attempted.
	if err := p.tokens.Transfer(takerHoldingB, makerHoldingB, rec.ReceiveAmount, taker, nil); err != nil {
		return errors.Wrap(err, "payment")
	}

	// Release the deposit; the program signs for the escrow's derived
	// address with the stored seeds and bump.
	signer := &escrow.SignerSeeds{
		Seeds:   RecordSeeds(rec.Maker, rec.Seed),
		Bump:    rec.Bump,
		Program: p.id,
	}
	deposit, err := p.tokens.Balance(vault)
	if err != nil {
		return err
	}
	if err := p.tokens.Transfer(vault, takerHoldingA, deposit, record, signer); err != nil {
		return errors.Wrap(err, "release")
	}

	// The maker funded both reserves at creation and gets them back:
	// the vault's on close here, the record's right after.
	if err := p.tokens.CloseHolding(vault, maker, record, signer); err != nil {
		return errors.Wrap(err, "close vault")
	}
	return p.closeRecord(record, maker)
}
