/*
Package host is an in-memory execution environment for the escrow program.

It persists accounts in a btree-backed key-value store and applies one
instruction at a time against a cache wrap of it: the program mutates
per-invocation account views, and the host commits every view together
when the handler succeeds or discards the wrap when it fails. That is the
all-or-nothing guarantee the program core relies on instead of carrying
rollback logic of its own.

The package also provides the reference implementations of the program's
collaborator services: address derivation and account lifecycle.
*/
package host

import (
	"bytes"
	"crypto/rand"

	bin "github.com/gagliardetto/binary"

	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/errors"
	"github.com/blueshift-labs/escrow/store"
	"github.com/blueshift-labs/escrow/token"
)

// accountPrefix namespaces account records in the store.
var accountPrefix = []byte("acct:")

// Processor is anything that can process one instruction against a set of
// account views. The escrow program implements it.
type Processor interface {
	Process(accounts []*escrow.Account, data []byte) error
}

// Ledger holds all account state and applies instructions atomically.
type Ledger struct {
	db store.CacheableKVStore
}

// NewLedger returns an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{db: store.MemStore()}
}

// Apply runs one instruction through the processor. Either every mutation
// of every account view is committed, or none is.
func (l *Ledger) Apply(proc Processor, instr escrow.Instruction) error {
	cache := l.db.CacheWrap()

	views := make([]*escrow.Account, len(instr.Accounts))
	unique := make([]*escrow.Account, 0, len(instr.Accounts))
	byAddr := make(map[string]*escrow.Account, len(instr.Accounts))
	for i, meta := range instr.Accounts {
		if v, ok := byAddr[string(meta.Address)]; ok {
			// The same account listed twice resolves to one view so
			// both references observe each other's mutations.
			v.Signer = v.Signer || meta.Signer
			v.Writable = v.Writable || meta.Writable
			views[i] = v
			continue
		}
		v, err := loadAccount(cache, meta.Address)
		if err != nil {
			cache.Discard()
			return err
		}
		v.Signer = meta.Signer
		v.Writable = meta.Writable
		views[i] = v
		unique = append(unique, v)
		byAddr[string(meta.Address)] = v
	}

	if err := proc.Process(views, instr.Data); err != nil {
		cache.Discard()
		return err
	}

	for _, v := range unique {
		if err := storeAccount(cache, v); err != nil {
			cache.Discard()
			return err
		}
	}
	return cache.Write()
}

// Account returns the committed state of an account. Accounts that do not
// exist are returned as empty views, never as an error.
func (l *Ledger) Account(addr escrow.Address) (*escrow.Account, error) {
	return loadAccount(l.db, addr)
}

// SetAccount writes an account's committed state directly. Genesis-style
// setup helper; instructions must go through Apply.
func (l *Ledger) SetAccount(acct *escrow.Account) error {
	return storeAccount(l.db, acct)
}

// Fund credits native balance to an address, creating the account if
// needed. Genesis-style setup helper.
func (l *Ledger) Fund(addr escrow.Address, amount uint64) error {
	acct, err := loadAccount(l.db, addr)
	if err != nil {
		return err
	}
	if acct.Balance+amount < acct.Balance {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	acct.Balance += amount
	return storeAccount(l.db, acct)
}

// Exists reports whether an account is persisted.
func (l *Ledger) Exists(addr escrow.Address) (bool, error) {
	acct, err := loadAccount(l.db, addr)
	if err != nil {
		return false, err
	}
	return acct.Exists(), nil
}

// CreateMint sets up an asset-type descriptor through the token service,
// funding the allocation on behalf of the authority.
func (l *Ledger) CreateMint(svc token.Service, authority escrow.Address, decimals uint8) (escrow.Address, error) {
	addr := RandomAddress()
	mint, err := loadAccount(l.db, addr)
	if err != nil {
		return nil, err
	}

	payer, err := loadAccount(l.db, authority)
	if err != nil {
		return nil, err
	}
	payer.Signer = true
	payer.Balance += svc.Lifecycle.MinimumBalance(token.MintLen)

	if err := svc.InitMint(mint, authority, decimals, payer); err != nil {
		return nil, err
	}
	if err := storeAccount(l.db, mint); err != nil {
		return nil, err
	}
	if err := storeAccount(l.db, payer); err != nil {
		return nil, err
	}
	return addr, nil
}

// IssueToHolding mints amount of an asset into the holding account of the
// given owner, creating the holding if absent. Setup helper signing as the
// mint authority.
func (l *Ledger) IssueToHolding(svc token.Service, mint, owner escrow.Address, amount uint64) (escrow.Address, error) {
	mintAcct, err := loadAccount(l.db, mint)
	if err != nil {
		return nil, err
	}
	m, err := token.UnmarshalMint(mintAcct.Data)
	if err != nil {
		return nil, err
	}

	holdingAddr, _, err := svc.HoldingAddress(owner, mint)
	if err != nil {
		return nil, err
	}
	holding, err := loadAccount(l.db, holdingAddr)
	if err != nil {
		return nil, err
	}

	authority, err := loadAccount(l.db, m.Authority)
	if err != nil {
		return nil, err
	}
	authority.Signer = true

	if !holding.Exists() {
		authority.Balance += svc.Lifecycle.MinimumBalance(token.HoldingLen)
		if err := svc.InitHolding(holding, owner, mint, authority); err != nil {
			return nil, err
		}
	}
	if err := svc.Issue(mintAcct, holding, amount, authority); err != nil {
		return nil, err
	}

	for _, acct := range []*escrow.Account{mintAcct, holding, authority} {
		if err := storeAccount(l.db, acct); err != nil {
			return nil, err
		}
	}
	return holdingAddr, nil
}

// HoldingBalance reads the committed asset amount of the (owner, asset)
// holding. A holding that does not exist holds zero.
func (l *Ledger) HoldingBalance(svc token.Service, owner, asset escrow.Address) (uint64, error) {
	addr, _, err := svc.HoldingAddress(owner, asset)
	if err != nil {
		return 0, err
	}
	acct, err := loadAccount(l.db, addr)
	if err != nil {
		return 0, err
	}
	if !acct.Exists() {
		return 0, nil
	}
	return svc.Balance(acct)
}

// RandomAddress returns a fresh key-pair style address. Test and setup
// helper.
func RandomAddress() escrow.Address {
	addr := make(escrow.Address, escrow.AddressLength)
	if _, err := rand.Read(addr); err != nil {
		panic(err)
	}
	return addr
}

func accountKey(addr escrow.Address) []byte {
	return append(accountPrefix, addr...)
}

// loadAccount reads an account from the store into a fresh view. Missing
// accounts load as empty views.
func loadAccount(db store.ReadOnlyKVStore, addr escrow.Address) (*escrow.Account, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	acct := &escrow.Account{Address: addr.Clone()}

	raw, err := db.Get(accountKey(addr))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return acct, nil
	}

	dec := bin.NewBinDecoder(raw)
	owner, err := dec.ReadBytes(escrow.AddressLength)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	// A zero owner is the sentinel for balance-only accounts.
	if !bytes.Equal(owner, make([]byte, escrow.AddressLength)) {
		acct.Owner = escrow.Address(owner)
	}
	if acct.Balance, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	size, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	if size > 0 {
		if acct.Data, err = dec.ReadBytes(int(size)); err != nil {
			return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
		}
	}
	return acct, nil
}

// storeAccount persists a view, deleting accounts that no longer exist.
func storeAccount(db store.SetDeleter, acct *escrow.Account) error {
	if !acct.Exists() {
		return db.Delete(accountKey(acct.Address))
	}

	owner := acct.Owner
	if len(owner) == 0 {
		// Plain balance-only accounts have no owning program; persist
		// a zero owner.
		owner = make(escrow.Address, escrow.AddressLength)
	}

	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteBytes(owner, false); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := enc.WriteUint64(acct.Balance, bin.LE); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := enc.WriteUint32(uint32(len(acct.Data)), bin.LE); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if len(acct.Data) > 0 {
		if err := enc.WriteBytes(acct.Data, false); err != nil {
			return errors.Wrap(errors.ErrInput, err.Error())
		}
	}
	return db.Set(accountKey(acct.Address), buf.Bytes())
}
