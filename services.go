package escrow

// SignerSeeds is an explicit signing context. It lets a program authorize
// an action on behalf of one of its derived addresses: the service
// receiving it recomputes the address from the seed list, the bump and the
// program identity and treats a match as an authorized signature. There is
// no private key involved at any point.
type SignerSeeds struct {
	Seeds   [][]byte
	Bump    uint8
	Program Address
}

// AddressDeriver maps a seed list and a program identity to an address
// that provably has no corresponding private key.
type AddressDeriver interface {
	// Derive finds the bump for which the seed list derives to a valid
	// keyless address and returns both.
	Derive(seeds [][]byte, program Address) (Address, uint8, error)

	// DeriveWithBump recomputes the address for a known bump. It fails
	// if the combination does not produce a valid keyless address.
	DeriveWithBump(seeds [][]byte, bump uint8, program Address) (Address, error)
}

// TokenMover is the asset-transfer service. All methods operate on the
// in-flight account views of the current operation, so a failure of any
// later step discards their effects together with everything else.
type TokenMover interface {
	// HoldingAddress returns the derived address of the holding account
	// deterministically tied to the (owner, asset) pair.
	HoldingAddress(owner, asset Address) (Address, uint8, error)

	// CheckAssetType fails unless the account is a genuine asset-type
	// descriptor owned by this service's program.
	CheckAssetType(acct *Account) error

	// CheckHolding fails unless the account is the holding account for
	// the (owner, asset) pair.
	CheckHolding(acct *Account, owner, asset Address) error

	// Balance returns the asset amount held by a holding account.
	Balance(acct *Account) (uint64, error)

	// Transfer moves amount of an asset between two holding accounts.
	// The authority must be the owner recorded in the source holding.
	// With nil seeds the authority account must carry a transaction
	// signature; otherwise the signing context must derive to the
	// authority's address.
	Transfer(from, to *Account, amount uint64, authority *Account, seeds *SignerSeeds) error

	// InitHolding allocates and initializes the holding account for the
	// (owner, asset) pair, funded by the payer.
	InitHolding(holding *Account, owner, asset Address, payer *Account) error

	// CloseHolding deallocates an emptied holding account and sends its
	// reserved native balance to the recipient.
	CloseHolding(holding, recipient *Account, authority *Account, seeds *SignerSeeds) error
}

// AccountLifecycle is the account allocation service of the hosting
// environment.
type AccountLifecycle interface {
	// MinimumBalance returns the smallest native balance an account of
	// given data size must hold to remain persisted.
	MinimumBalance(size int) uint64

	// Open allocates storage of exactly size bytes, assigns ownership to
	// the given program and funds the minimum persistent balance from
	// the payer.
	Open(acct, payer *Account, size int, owner Address) error

	// Close returns the account's residual native balance to the
	// recipient and deallocates the storage in one irreversible step.
	Close(acct, recipient *Account) error
}
