package program_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/errors"
	"github.com/blueshift-labs/escrow/host"
	"github.com/blueshift-labs/escrow/program"
	"github.com/blueshift-labs/escrow/state"
	"github.com/blueshift-labs/escrow/token"
)

const (
	initialNative   = 100_000_000
	initialDeposits = 1000
	initialPayments = 800
)

type fixture struct {
	t      *testing.T
	ledger *host.Ledger
	svc    token.Service
	prog   *program.Program

	programID escrow.Address
	maker     escrow.Address
	taker     escrow.Address
	assetA    escrow.Address
	assetB    escrow.Address

	makerHoldingA escrow.Address
	takerHoldingB escrow.Address
}

// newFixture sets up a ledger where the maker owns 1000 of asset A, the
// taker owns 800 of asset B and both have native funds for rent.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	deriver := host.Deriver{}
	lifecycle := host.Lifecycle{Rent: host.DefaultRentPolicy}

	f := &fixture{
		t:         t,
		ledger:    host.NewLedger(),
		programID: host.RandomAddress(),
		maker:     host.RandomAddress(),
		taker:     host.RandomAddress(),
	}
	f.svc = token.Service{
		ProgramID: host.RandomAddress(),
		Derive:    deriver,
		Lifecycle: lifecycle,
	}
	f.prog = program.New(f.programID, deriver, f.svc, lifecycle)

	authority := host.RandomAddress()
	var err error
	f.assetA, err = f.ledger.CreateMint(f.svc, authority, 6)
	require.NoError(t, err)
	f.assetB, err = f.ledger.CreateMint(f.svc, authority, 6)
	require.NoError(t, err)

	f.makerHoldingA, err = f.ledger.IssueToHolding(f.svc, f.assetA, f.maker, initialDeposits)
	require.NoError(t, err)
	f.takerHoldingB, err = f.ledger.IssueToHolding(f.svc, f.assetB, f.taker, initialPayments)
	require.NoError(t, err)

	require.NoError(t, f.ledger.Fund(f.maker, initialNative))
	require.NoError(t, f.ledger.Fund(f.taker, initialNative))
	return f
}

func (f *fixture) recordAddress(seed uint64) escrow.Address {
	f.t.Helper()
	addr, _, err := program.RecordAddress(host.Deriver{}, f.programID, f.maker, seed)
	require.NoError(f.t, err)
	return addr
}

func (f *fixture) vaultAddress(record escrow.Address) escrow.Address {
	f.t.Helper()
	addr, _, err := f.svc.HoldingAddress(record, f.assetA)
	require.NoError(f.t, err)
	return addr
}

func (f *fixture) createInstruction(msg program.CreateMsg) escrow.Instruction {
	f.t.Helper()
	record := f.recordAddress(msg.Seed)
	instr, err := program.NewCreateInstruction(
		f.programID, f.maker, record, f.assetA, f.assetB, f.makerHoldingA, f.vaultAddress(record), msg)
	require.NoError(f.t, err)
	return instr
}

// create applies a default create operation and returns the record and
// vault addresses.
func (f *fixture) create(seed uint64) (record, vault escrow.Address) {
	f.t.Helper()
	msg := program.CreateMsg{Seed: seed, ReceiveAmount: 500, DepositAmount: 1000}
	require.NoError(f.t, f.ledger.Apply(f.prog, f.createInstruction(msg)))
	record = f.recordAddress(seed)
	return record, f.vaultAddress(record)
}

func (f *fixture) fulfillInstruction(record, vault escrow.Address) escrow.Instruction {
	f.t.Helper()
	takerHoldingA, _, err := f.svc.HoldingAddress(f.taker, f.assetA)
	require.NoError(f.t, err)
	makerHoldingB, _, err := f.svc.HoldingAddress(f.maker, f.assetB)
	require.NoError(f.t, err)
	return program.NewFulfillInstruction(
		f.programID, f.taker, f.maker, record, vault, takerHoldingA, f.takerHoldingB, makerHoldingB)
}

func (f *fixture) cancelInstruction(record, vault escrow.Address) escrow.Instruction {
	f.t.Helper()
	return program.NewCancelInstruction(f.programID, f.maker, record, vault, f.makerHoldingA)
}

func (f *fixture) holdingBalance(owner, asset escrow.Address) uint64 {
	f.t.Helper()
	amount, err := f.ledger.HoldingBalance(f.svc, owner, asset)
	require.NoError(f.t, err)
	return amount
}

func (f *fixture) nativeBalance(addr escrow.Address) uint64 {
	f.t.Helper()
	acct, err := f.ledger.Account(addr)
	require.NoError(f.t, err)
	return acct.Balance
}

func (f *fixture) loadRecord(addr escrow.Address) *state.Escrow {
	f.t.Helper()
	acct, err := f.ledger.Account(addr)
	require.NoError(f.t, err)
	rec, err := state.Unmarshal(acct.Data)
	require.NoError(f.t, err)
	return rec
}

func TestCreateHappyPath(t *testing.T) {
	f := newFixture(t)

	record, vault := f.create(1)

	rec := f.loadRecord(record)
	assert.Equal(t, uint64(1), rec.Seed)
	assert.True(t, rec.Maker.Equals(f.maker))
	assert.True(t, rec.AssetA.Equals(f.assetA))
	assert.True(t, rec.AssetB.Equals(f.assetB))
	assert.Equal(t, uint64(500), rec.ReceiveAmount)

	// The stored bump reproduces the record's own address.
	derived, err := host.Deriver{}.DeriveWithBump(
		program.RecordSeeds(f.maker, 1), rec.Bump, f.programID)
	require.NoError(t, err)
	assert.True(t, derived.Equals(record))

	assert.Equal(t, uint64(1000), f.holdingBalance(record, f.assetA))
	assert.Equal(t, uint64(initialDeposits-1000), f.holdingBalance(f.maker, f.assetA))

	// The maker funded the minimum balance of the record and the vault.
	rent := host.DefaultRentPolicy
	wantSpent := rent.MinimumBalance(state.EscrowLen) + rent.MinimumBalance(token.HoldingLen)
	assert.Equal(t, uint64(initialNative)-wantSpent, f.nativeBalance(f.maker))

	exists, err := f.ledger.Exists(vault)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateValidation(t *testing.T) {
	cases := map[string]struct {
		mutate  func(f *fixture, instr *escrow.Instruction)
		msg     program.CreateMsg
		wantErr *errors.Error
	}{
		"zero receive amount": {
			msg:     program.CreateMsg{Seed: 1, ReceiveAmount: 0, DepositAmount: 1000},
			wantErr: errors.ErrInput,
		},
		"zero deposit amount": {
			msg:     program.CreateMsg{Seed: 1, ReceiveAmount: 500, DepositAmount: 0},
			wantErr: errors.ErrInput,
		},
		"unsigned maker": {
			msg: program.CreateMsg{Seed: 1, ReceiveAmount: 500, DepositAmount: 1000},
			mutate: func(f *fixture, instr *escrow.Instruction) {
				instr.Accounts[0].Signer = false
			},
			wantErr: errors.ErrInvalidSigner,
		},
		"record account at a foreign address": {
			msg: program.CreateMsg{Seed: 1, ReceiveAmount: 500, DepositAmount: 1000},
			mutate: func(f *fixture, instr *escrow.Instruction) {
				instr.Accounts[1].Address = host.RandomAddress()
			},
			wantErr: errors.ErrInvalidDerivedAddress,
		},
		"asset a is no descriptor": {
			msg: program.CreateMsg{Seed: 1, ReceiveAmount: 500, DepositAmount: 1000},
			mutate: func(f *fixture, instr *escrow.Instruction) {
				instr.Accounts[2].Address = host.RandomAddress()
			},
			wantErr: errors.ErrInvalidAssetType,
		},
		"deposit source of the wrong owner": {
			msg: program.CreateMsg{Seed: 1, ReceiveAmount: 500, DepositAmount: 1000},
			mutate: func(f *fixture, instr *escrow.Instruction) {
				instr.Accounts[4].Address = f.takerHoldingB
			},
			wantErr: errors.ErrInvalidOwner,
		},
		"deposit exceeding the holding": {
			msg:     program.CreateMsg{Seed: 1, ReceiveAmount: 500, DepositAmount: initialDeposits + 1},
			wantErr: errors.ErrInsufficientFunds,
		},
		"truncated payload": {
			msg: program.CreateMsg{Seed: 1, ReceiveAmount: 500, DepositAmount: 1000},
			mutate: func(f *fixture, instr *escrow.Instruction) {
				instr.Data = instr.Data[:len(instr.Data)-1]
			},
			wantErr: errors.ErrInvalidDataLength,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			instr := f.createInstruction(tc.msg)
			if tc.mutate != nil {
				tc.mutate(f, &instr)
			}

			err := f.ledger.Apply(f.prog, instr)
			assert.True(t, tc.wantErr.Is(err), "want %v, got %+v", tc.wantErr, err)

			// No partial state: the record never came to exist and no
			// balance moved.
			exists, lerr := f.ledger.Exists(f.recordAddress(1))
			require.NoError(t, lerr)
			assert.False(t, exists)
			assert.Equal(t, uint64(initialDeposits), f.holdingBalance(f.maker, f.assetA))
			assert.Equal(t, uint64(initialNative), f.nativeBalance(f.maker))
		})
	}
}

func TestCreateSameSeedTwice(t *testing.T) {
	f := newFixture(t)
	f.create(7)

	msg := program.CreateMsg{Seed: 7, ReceiveAmount: 500, DepositAmount: 100}
	err := f.ledger.Apply(f.prog, f.createInstruction(msg))
	assert.True(t, errors.ErrAlreadyInitialized.Is(err), "got %+v", err)

	// A different seed gives the same maker a fresh escrow.
	msg.Seed = 8
	assert.NoError(t, f.ledger.Apply(f.prog, f.createInstruction(msg)))
}

func TestCreateWithoutRentFunds(t *testing.T) {
	f := newFixture(t)

	// Drain the maker's native balance so the record cannot be funded.
	acct, err := f.ledger.Account(f.maker)
	require.NoError(t, err)
	acct.Balance = 1
	require.NoError(t, f.ledger.SetAccount(acct))

	msg := program.CreateMsg{Seed: 1, ReceiveAmount: 500, DepositAmount: 1000}
	err = f.ledger.Apply(f.prog, f.createInstruction(msg))
	assert.True(t, errors.ErrInsufficientFunds.Is(err), "got %+v", err)
}

func TestFulfillHappyPath(t *testing.T) {
	f := newFixture(t)
	record, vault := f.create(1)

	require.NoError(t, f.ledger.Apply(f.prog, f.fulfillInstruction(record, vault)))

	assert.Equal(t, uint64(500), f.holdingBalance(f.maker, f.assetB))
	assert.Equal(t, uint64(1000), f.holdingBalance(f.taker, f.assetA))
	assert.Equal(t, uint64(initialPayments-500), f.holdingBalance(f.taker, f.assetB))

	for _, addr := range []escrow.Address{record, vault} {
		exists, err := f.ledger.Exists(addr)
		require.NoError(t, err)
		assert.False(t, exists)
	}

	// Both reserved balances return to the maker, so the maker's native
	// balance is fully restored. The taker paid for two new holdings.
	assert.Equal(t, uint64(initialNative), f.nativeBalance(f.maker))
	rent := host.DefaultRentPolicy
	wantTaker := uint64(initialNative) - 2*rent.MinimumBalance(token.HoldingLen)
	assert.Equal(t, wantTaker, f.nativeBalance(f.taker))
}

func TestFulfillValidation(t *testing.T) {
	cases := map[string]struct {
		mutate  func(f *fixture, instr *escrow.Instruction)
		wantErr *errors.Error
	}{
		"unsigned taker": {
			mutate: func(f *fixture, instr *escrow.Instruction) {
				instr.Accounts[0].Signer = false
			},
			wantErr: errors.ErrInvalidSigner,
		},
		"wrong maker account": {
			mutate: func(f *fixture, instr *escrow.Instruction) {
				instr.Accounts[1].Address = host.RandomAddress()
			},
			wantErr: errors.ErrUnauthorized,
		},
		"record account missing": {
			mutate: func(f *fixture, instr *escrow.Instruction) {
				instr.Accounts[2].Address = host.RandomAddress()
			},
			wantErr: errors.ErrNotFound,
		},
		"vault of another escrow": {
			mutate: func(f *fixture, instr *escrow.Instruction) {
				instr.Accounts[3].Address = f.makerHoldingA
			},
			wantErr: errors.ErrInvalidOwner,
		},
		"unexpected payload": {
			mutate: func(f *fixture, instr *escrow.Instruction) {
				instr.Data = append(instr.Data, 0xff)
			},
			wantErr: errors.ErrInvalidDataLength,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			record, vault := f.create(1)

			instr := f.fulfillInstruction(record, vault)
			tc.mutate(f, &instr)

			err := f.ledger.Apply(f.prog, instr)
			assert.True(t, tc.wantErr.Is(err), "want %v, got %+v", tc.wantErr, err)

			// The escrow stays open and untouched.
			assert.Equal(t, uint64(1000), f.holdingBalance(record, f.assetA))
			assert.Equal(t, uint64(initialPayments), f.holdingBalance(f.taker, f.assetB))
			assert.Equal(t, uint64(0), f.holdingBalance(f.maker, f.assetB))
		})
	}
}

func TestFulfillWithInsufficientPayment(t *testing.T) {
	f := newFixture(t)
	msg := program.CreateMsg{Seed: 1, ReceiveAmount: initialPayments + 1, DepositAmount: 1000}
	require.NoError(t, f.ledger.Apply(f.prog, f.createInstruction(msg)))
	record := f.recordAddress(1)
	vault := f.vaultAddress(record)

	err := f.ledger.Apply(f.prog, f.fulfillInstruction(record, vault))
	assert.True(t, errors.ErrInsufficientFunds.Is(err), "got %+v", err)

	// The escrow remains open, every balance unchanged; the new taker
	// holding allocated mid-operation was discarded with the rest.
	exists, lerr := f.ledger.Exists(record)
	require.NoError(t, lerr)
	assert.True(t, exists)
	assert.Equal(t, uint64(1000), f.holdingBalance(record, f.assetA))
	assert.Equal(t, uint64(initialPayments), f.holdingBalance(f.taker, f.assetB))
	assert.Equal(t, uint64(initialNative), f.nativeBalance(f.taker))

	takerHoldingA, _, err := f.svc.HoldingAddress(f.taker, f.assetA)
	require.NoError(t, err)
	exists, lerr = f.ledger.Exists(takerHoldingA)
	require.NoError(t, lerr)
	assert.False(t, exists)
}

func TestFulfillTamperedRecordFailsDerivation(t *testing.T) {
	f := newFixture(t)
	record, vault := f.create(1)

	// Rewrite the record with a different seed; the stored bump no longer
	// reproduces the account's address.
	acct, err := f.ledger.Account(record)
	require.NoError(t, err)
	rec, err := state.Unmarshal(acct.Data)
	require.NoError(t, err)
	rec.Seed = 99
	acct.Data, err = rec.Marshal()
	require.NoError(t, err)
	require.NoError(t, f.ledger.SetAccount(acct))

	err = f.ledger.Apply(f.prog, f.fulfillInstruction(record, vault))
	assert.True(t, errors.ErrInvalidDerivedAddress.Is(err), "got %+v", err)
}

func TestCancelHappyPath(t *testing.T) {
	f := newFixture(t)
	record, vault := f.create(1)

	require.NoError(t, f.ledger.Apply(f.prog, f.cancelInstruction(record, vault)))

	// Full deposit returned, both accounts gone, rents refunded.
	assert.Equal(t, uint64(initialDeposits), f.holdingBalance(f.maker, f.assetA))
	assert.Equal(t, uint64(initialNative), f.nativeBalance(f.maker))
	for _, addr := range []escrow.Address{record, vault} {
		exists, err := f.ledger.Exists(addr)
		require.NoError(t, err)
		assert.False(t, exists)
	}
}

func TestCancelByForeignSigner(t *testing.T) {
	f := newFixture(t)
	record, vault := f.create(1)

	makerHoldingA, _, err := f.svc.HoldingAddress(f.maker, f.assetA)
	require.NoError(t, err)
	instr := program.NewCancelInstruction(f.programID, f.taker, record, vault, makerHoldingA)

	err = f.ledger.Apply(f.prog, instr)
	assert.True(t, errors.ErrUnauthorized.Is(err), "got %+v", err)

	// Escrow unaffected.
	assert.Equal(t, uint64(1000), f.holdingBalance(record, f.assetA))
}

func TestCancelTwice(t *testing.T) {
	f := newFixture(t)
	record, vault := f.create(1)

	require.NoError(t, f.ledger.Apply(f.prog, f.cancelInstruction(record, vault)))

	err := f.ledger.Apply(f.prog, f.cancelInstruction(record, vault))
	assert.True(t, errors.ErrNotFound.Is(err), "got %+v", err)
}

func TestFulfillAfterCancel(t *testing.T) {
	f := newFixture(t)
	record, vault := f.create(1)
	require.NoError(t, f.ledger.Apply(f.prog, f.cancelInstruction(record, vault)))

	err := f.ledger.Apply(f.prog, f.fulfillInstruction(record, vault))
	assert.True(t, errors.ErrNotFound.Is(err), "got %+v", err)
}

func TestScenarioFromTheBook(t *testing.T) {
	// Create(seed=1, receive=500, deposit=1000), then fulfill by a taker
	// holding at least 500 of asset B.
	f := newFixture(t)

	msg := program.CreateMsg{Seed: 1, ReceiveAmount: 500, DepositAmount: 1000}
	require.NoError(t, f.ledger.Apply(f.prog, f.createInstruction(msg)))

	record := f.recordAddress(1)
	rec := f.loadRecord(record)
	assert.Equal(t, uint64(1), rec.Seed)
	assert.Equal(t, uint64(500), rec.ReceiveAmount)
	assert.Equal(t, uint64(1000), f.holdingBalance(record, f.assetA))

	require.NoError(t, f.ledger.Apply(f.prog, f.fulfillInstruction(record, f.vaultAddress(record))))
	assert.Equal(t, uint64(500), f.holdingBalance(f.maker, f.assetB))
	assert.Equal(t, uint64(1000), f.holdingBalance(f.taker, f.assetA))
}

func TestUnknownInstructionTag(t *testing.T) {
	f := newFixture(t)
	instr := escrow.Instruction{
		Program:  f.programID,
		Accounts: []escrow.AccountMeta{escrow.Meta(f.maker, true, true)},
		Data:     []byte{42},
	}
	err := f.ledger.Apply(f.prog, instr)
	assert.True(t, errors.ErrInput.Is(err), "got %+v", err)

	err = f.ledger.Apply(f.prog, escrow.Instruction{
		Program:  f.programID,
		Accounts: []escrow.AccountMeta{escrow.Meta(f.maker, true, true)},
		Data:     nil,
	})
	assert.True(t, errors.ErrInput.Is(err), "got %+v", err)
}
