package program

import (
	"encoding/binary"

	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/errors"
	"github.com/blueshift-labs/escrow/state"
)

// The validation framework. One validator per account role; every handler
// runs all of them before any mutation, so the first violation aborts the
// whole operation with no observable side effect. Validators returning a
// typed value (the record, the bump) only do so after all their checks
// passed.

// checkSigner fails unless the account carries an authorized transaction
// signature.
func checkSigner(acct *escrow.Account) error {
	if !acct.Signer {
		return errors.Wrapf(errors.ErrInvalidSigner, "%s", acct.Address)
	}
	return nil
}

// RecordSeeds returns the derivation seed list of the escrow record
// belonging to (maker, seed).
func RecordSeeds(maker escrow.Address, seed uint64) [][]byte {
	var sb [8]byte
	binary.LittleEndian.PutUint64(sb[:], seed)
	return [][]byte{recordTag, maker, sb[:]}
}

// RecordAddress derives the address and bump of the escrow record
// belonging to (maker, seed) under the given program identity.
func RecordAddress(d escrow.AddressDeriver, programID, maker escrow.Address, seed uint64) (escrow.Address, uint8, error) {
	return d.Derive(RecordSeeds(maker, seed), programID)
}

// checkRecord verifies the account holds a live record owned by this
// program.
func (p *Program) checkRecord(acct *escrow.Account) error {
	if !acct.Exists() {
		return errors.Wrapf(errors.ErrNotFound, "no escrow at %s", acct.Address)
	}
	if !acct.OwnedBy(p.id) {
		return errors.Wrapf(errors.ErrInvalidOwner, "%s is not owned by the escrow program", acct.Address)
	}
	return nil
}

// loadRecord decodes the escrow record and re-verifies that the account
// address matches the derivation of the record's own (maker, seed) with
// the stored bump. A record whose address cannot be reproduced is treated
// as forged.
func (p *Program) loadRecord(acct *escrow.Account) (*state.Escrow, error) {
	if err := p.checkRecord(acct); err != nil {
		return nil, err
	}
	rec, err := state.Unmarshal(acct.Data)
	if err != nil {
		return nil, err
	}
	derived, err := p.deriver.DeriveWithBump(RecordSeeds(rec.Maker, rec.Seed), rec.Bump, p.id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDerivedAddress, err.Error())
	}
	if !derived.Equals(acct.Address) {
		return nil, errors.Wrapf(errors.ErrInvalidDerivedAddress, "record derives to %s", derived)
	}
	return rec, nil
}

// initRecord recomputes the expected derived address from the seeds,
// then allocates storage of exactly size bytes owned by this program,
// funded by the payer. Returns the bump for the handler to store.
func (p *Program) initRecord(acct, payer *escrow.Account, seeds [][]byte, size int) (uint8, error) {
	derived, bump, err := p.deriver.Derive(seeds, p.id)
	if err != nil {
		return 0, errors.Wrap(errors.ErrInvalidDerivedAddress, err.Error())
	}
	if !derived.Equals(acct.Address) {
		return 0, errors.Wrapf(errors.ErrInvalidDerivedAddress, "record must live at %s", derived)
	}
	if acct.Exists() {
		return 0, errors.Wrapf(errors.ErrAlreadyInitialized, "%s", acct.Address)
	}
	if err := p.lifecycle.Open(acct, payer, size, p.id); err != nil {
		return 0, err
	}
	return bump, nil
}

// closeRecord returns the record account's reserved balance to the
// recipient and deallocates it in one irreversible step.
func (p *Program) closeRecord(acct, recipient *escrow.Account) error {
	if err := p.checkRecord(acct); err != nil {
		return err
	}
	return p.lifecycle.Close(acct, recipient)
}

// initHoldingIfNeeded is the create-if-absent mode of the holding account
// check: accept an already valid holding, otherwise allocate it funded by
// the payer. InitHolding re-verifies the derived address, so a wrong
// account cannot slip through the failed check.
func (p *Program) initHoldingIfNeeded(acct *escrow.Account, owner, asset escrow.Address, payer *escrow.Account) error {
	if err := p.tokens.CheckHolding(acct, owner, asset); err == nil {
		return nil
	}
	return p.tokens.InitHolding(acct, owner, asset, payer)
}
