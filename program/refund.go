package program

import (
	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/errors"
)

// refund cancels an open escrow: the full vault balance returns to the
// maker and both the vault and the record are torn down. Only the stored
// maker may invoke this. Expected account order:
//
//	0. maker           [signer, writable]
//	1. escrow record   [writable]
//	2. vault           [writable]
//	3. maker holding A [writable] created if absent, receives the deposit
func (p *Program) refund(accounts []*escrow.Account, payload []byte) error {
	if err := checkNoPayload(payload); err != nil {
		return err
	}
	if len(accounts) != 4 {
		return errors.Wrapf(errors.ErrInput, "cancel expects 4 accounts, got %d", len(accounts))
	}
	maker, record, vault, makerHoldingA := accounts[0], accounts[1], accounts[2], accounts[3]

	if err := checkSigner(maker); err != nil {
		return errors.Wrap(err, "maker")
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

	if err := p.initHoldingIfNeeded(makerHoldingA, maker.Address, rec.AssetA, maker); err != nil {
		return errors.Wrap(err, "maker holding")
	}

	signer := &escrow.SignerSeeds{
		Seeds:   RecordSeeds(rec.Maker, rec.Seed),
		Bump:    rec.Bump,
		Program: p.id,
	}
	deposit, err := p.tokens.Balance(vault)
	if err != nil {
		return err
	}
	if err := p.tokens.Transfer(vault, makerHoldingA, deposit, record, signer); err != nil {
		return errors.Wrap(err, "return deposit")
	}

	if err := p.tokens.CloseHolding(vault, maker, record, signer); err != nil {
		return errors.Wrap(err, "close vault")
	}
	return p.closeRecord(record, maker)
}
