/*
Package program implements the escrow program core: the account-validation
framework and the three state-transition handlers that compose validation,
record mutation and asset transfer into all-or-nothing operations.

A maker locks an amount of asset A into a program-owned vault in exchange
for a fixed amount of asset B. A taker completes the swap by paying asset B
and receiving the vault's content, or the maker cancels and reclaims the
deposit. Every operation is a single synchronous step; atomicity is
provided by the hosting environment, which discards all effects when a
handler returns an error.

Because account references are supplied by an untrusted caller on every
invocation, nothing is trusted across invocations: every address, ownership
and signer relationship is re-derived and re-checked each time.
*/
package program

import (
	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/errors"
)

// recordTag is the leading derivation seed of every escrow record address.
var recordTag = []byte("escrow")

// Program processes escrow instructions. The program identity and the
// collaborator services are injected at construction; there is no
// compiled-in constant.
type Program struct {
	id        escrow.Address
	deriver   escrow.AddressDeriver
	tokens    escrow.TokenMover
	lifecycle escrow.AccountLifecycle
}

// New returns a program bound to the given identity and services.
func New(id escrow.Address, deriver escrow.AddressDeriver, tokens escrow.TokenMover, lifecycle escrow.AccountLifecycle) *Program {
	return &Program{
		id:        id,
		deriver:   deriver,
		tokens:    tokens,
		lifecycle: lifecycle,
	}
}

// ID returns the program identity.
func (p *Program) ID() escrow.Address {
	return p.id
}

// Process routes one instruction to its handler by the leading tag byte.
// A panic inside a handler is captured and reported as an error so the
// hosting environment can discard the operation like any other failure.
func (p *Program) Process(accounts []*escrow.Account, data []byte) (err error) {
	defer errors.Recover(&err)

	if len(data) == 0 {
		return errors.Wrap(errors.ErrInput, "empty instruction data")
	}
	tag, payload := data[0], data[1:]
	switch tag {
	case escrow.TagCreate:
		return p.make(accounts, payload)
	case escrow.TagFulfill:
		return p.take(accounts, payload)
	case escrow.TagCancel:
		return p.refund(accounts, payload)
	default:
		return errors.Wrapf(errors.ErrInput, "unknown instruction tag %d", tag)
	}
}
