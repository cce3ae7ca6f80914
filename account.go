package escrow

// Account is the view of one ledger account handed to the program for a
// single invocation. The caller supplying the view is untrusted: nothing
// about it may be believed until the validation framework checked it, and
// no validation result survives past the invocation.
//
// Mutations of Balance and Data are applied to the view only. The hosting
// environment commits all views together when the operation succeeds and
// discards them all when it fails.
type Account struct {
	// Address the account lives under.
	Address Address

	// Owner is the program that is allowed to mutate the account's data.
	// Nil for accounts that do not exist yet.
	Owner Address

	// Balance is the native-currency balance. Accounts below the minimum
	// persistent balance for their data size are not persisted.
	Balance uint64

	// Data is the persisted payload. Its layout is defined by the owner.
	Data []byte

	// Signer reports whether the hosting environment verified an
	// authorized transaction signature for this account's address.
	Signer bool

	// Writable reports whether the caller declared the account mutable
	// for this invocation.
	Writable bool
}

// Exists reports whether the account is persisted on the ledger. A closed
// or never-created account has no owner, no data and no balance.
func (a *Account) Exists() bool {
	return a.Balance != 0 || len(a.Data) != 0 || len(a.Owner) != 0
}

// OwnedBy reports whether the account data is controlled by given program.
func (a *Account) OwnedBy(program Address) bool {
	return a.Owner.Equals(program)
}
