package program

import (
	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/errors"
	"github.com/blueshift-labs/escrow/state"
)

// make allocates a new escrow record and its vault and deposits the
// maker's asset A. Expected account order:
//
//	0. maker           [signer, writable] pays for both new accounts
//	1. escrow record   [writable]         derived from (tag, maker, seed)
//	2. asset A         []                 asset-type descriptor of the deposit
//	3. asset B         []                 asset-type descriptor of the ask
//	4. maker holding A [writable]         source of the deposit
//	5. vault           [writable]         holding owned by the escrow address
func (p *Program) make(accounts []*escrow.Account, payload []byte) error {
	if len(accounts) != 6 {
		return errors.Wrapf(errors.ErrInput, "create expects 6 accounts, got %d", len(accounts))
	}
	maker, record, assetA, assetB, source, vault := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4], accounts[5]

	msg, err := parseCreateMsg(payload)
	if err != nil {
		return err
	}

	if err := checkSigner(maker); err != nil {
		return errors.Wrap(err, "maker")
	}
	if err := p.tokens.CheckAssetType(assetA); err != nil {
		return errors.Wrap(err, "asset a")
	}
	if err := p.tokens.CheckAssetType(assetB); err != nil {
		return errors.Wrap(err, "asset b")
	}
	if err := p.tokens.CheckHolding(source, maker.Address, assetA.Address); err != nil {
		return errors.Wrap(err, "deposit source")
	}

	// All checks passed; allocate the record and the vault.
	seeds := RecordSeeds(maker.Address, msg.Seed)
	bump, err := p.initRecord(record, maker, seeds, state.EscrowLen)
	if err != nil {
		return errors.Wrap(err, "escrow record")
	}
	if err := p.initHoldingIfNeeded(vault, record.Address, assetA.Address, maker); err != nil {
		return errors.Wrap(err, "vault")
	}

	// The record is written exactly once and never mutated again.
	rec := &state.Escrow{
		Seed:          msg.Seed,
		Maker:         maker.Address.Clone(),
		AssetA:        assetA.Address.Clone(),
		AssetB:        assetB.Address.Clone(),
		ReceiveAmount: msg.ReceiveAmount,
		Bump:          bump,
	}
	raw, err := rec.Marshal()
	if err != nil {
		return err
	}
	record.Data = raw

	// Deposit is authorized directly by the maker's signature, not by
	// the program.
	if err := p.tokens.Transfer(source, vault, msg.DepositAmount, maker, nil); err != nil {
		return errors.Wrap(err, "deposit")
	}
	return nil
}
