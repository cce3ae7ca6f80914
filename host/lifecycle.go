package host

import (
	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/errors"
)

// RentPolicy prices account persistence. An account must hold at least the
// minimum balance for its data size to remain on the ledger.
type RentPolicy struct {
	BasePrice uint64
	BytePrice uint64
}

// DefaultRentPolicy matches what the demo and the tests use.
var DefaultRentPolicy = RentPolicy{
	BasePrice: 890880,
	BytePrice: 6960,
}

// MinimumBalance returns the smallest native balance an account of given
// data size must hold to remain persisted.
func (r RentPolicy) MinimumBalance(size int) uint64 {
	return r.BasePrice + r.BytePrice*uint64(size)
}

// Lifecycle implements the account allocation service over in-flight
// account views.
type Lifecycle struct {
	Rent RentPolicy
}

var _ escrow.AccountLifecycle = Lifecycle{}

// MinimumBalance implements escrow.AccountLifecycle.
func (l Lifecycle) MinimumBalance(size int) uint64 {
	return l.Rent.MinimumBalance(size)
}

// Open allocates storage of exactly size bytes, assigns ownership and
// funds the minimum persistent balance from the payer.
func (l Lifecycle) Open(acct, payer *escrow.Account, size int, owner escrow.Address) error {
	if acct.Exists() {
		return errors.Wrapf(errors.ErrAlreadyInitialized, "%s", acct.Address)
	}
	if !payer.Signer {
		return errors.Wrapf(errors.ErrInvalidSigner, "payer %s", payer.Address)
	}
	if err := owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if size < 0 {
		return errors.Wrapf(errors.ErrInput, "negative account size %d", size)
	}

	need := l.MinimumBalance(size)
	if payer.Balance < need {
		return errors.Wrapf(errors.ErrInsufficientFunds, "payer %s has %d, needs %d", payer.Address, payer.Balance, need)
	}
	payer.Balance -= need
	acct.Balance = need
	acct.Owner = owner.Clone()
	acct.Data = make([]byte, size)
	return nil
}

// Close returns the account's residual native balance to the recipient and
// deallocates the storage. There is no intermediate state: the account is
// gone the moment this returns.
func (l Lifecycle) Close(acct, recipient *escrow.Account) error {
	if acct.Address.Equals(recipient.Address) {
		return errors.Wrap(errors.ErrInput, "cannot close an account into itself")
	}
	if recipient.Balance+acct.Balance < recipient.Balance {
		return errors.Wrap(errors.ErrOverflow, "recipient balance")
	}
	recipient.Balance += acct.Balance
	acct.Balance = 0
	acct.Data = nil
	acct.Owner = nil
	return nil
}
