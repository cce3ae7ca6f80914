package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/host"
	"github.com/blueshift-labs/escrow/program"
	"github.com/blueshift-labs/escrow/token"
)

// demoCmd replays a complete swap on a fresh in-memory ledger: a maker
// escrows 1000 of asset A against 500 of asset B, and a taker fulfills.
func demoCmd(v *viper.Viper) *cobra.Command {
	var cancel bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "run a full swap against an in-memory ledger and print the balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(v)
			if err != nil {
				return err
			}

			deriver := host.Deriver{}
			lifecycle := host.Lifecycle{Rent: conf.Rent}
			svc := token.Service{ProgramID: conf.TokenProgramID, Derive: deriver, Lifecycle: lifecycle}
			prog := program.New(conf.ProgramID, deriver, svc, lifecycle)
			ledger := host.NewLedger()

			maker := host.RandomAddress()
			taker := host.RandomAddress()
			authority := host.RandomAddress()

			assetA, err := ledger.CreateMint(svc, authority, 6)
			if err != nil {
				return err
			}
			assetB, err := ledger.CreateMint(svc, authority, 6)
			if err != nil {
				return err
			}
			makerHoldingA, err := ledger.IssueToHolding(svc, assetA, maker, 1000)
			if err != nil {
				return err
			}
			takerHoldingB, err := ledger.IssueToHolding(svc, assetB, taker, 800)
			if err != nil {
				return err
			}
			for _, party := range []escrow.Address{maker, taker} {
				if err := ledger.Fund(party, 100_000_000); err != nil {
					return err
				}
			}

			const seed = 1
			record, _, err := program.RecordAddress(deriver, conf.ProgramID, maker, seed)
			if err != nil {
				return err
			}
			vault, _, err := svc.HoldingAddress(record, assetA)
			if err != nil {
				return err
			}

			msg := program.CreateMsg{Seed: seed, ReceiveAmount: 500, DepositAmount: 1000}
			create, err := program.NewCreateInstruction(
				conf.ProgramID, maker, record, assetA, assetB, makerHoldingA, vault, msg)
			if err != nil {
				return err
			}
			if err := ledger.Apply(prog, create); err != nil {
				return err
			}
			cmd.Printf("created escrow %s: 1000 of %s against 500 of %s\n", record, assetA, assetB)

			if cancel {
				instr := program.NewCancelInstruction(conf.ProgramID, maker, record, vault, makerHoldingA)
				if err := ledger.Apply(prog, instr); err != nil {
					return err
				}
				cmd.Println("cancelled by the maker")
			} else {
				takerHoldingA, _, err := svc.HoldingAddress(taker, assetA)
				if err != nil {
					return err
				}
				makerHoldingB, _, err := svc.HoldingAddress(maker, assetB)
				if err != nil {
					return err
				}
				instr := program.NewFulfillInstruction(
					conf.ProgramID, taker, maker, record, vault, takerHoldingA, takerHoldingB, makerHoldingB)
				if err := ledger.Apply(prog, instr); err != nil {
					return err
				}
				cmd.Println("fulfilled by the taker")
			}

			for _, row := range []struct {
				name  string
				owner escrow.Address
				asset escrow.Address
			}{
				{"maker asset a", maker, assetA},
				{"maker asset b", maker, assetB},
				{"taker asset a", taker, assetA},
				{"taker asset b", taker, assetB},
			} {
				amount, err := ledger.HoldingBalance(svc, row.owner, row.asset)
				if err != nil {
					return err
				}
				cmd.Printf("%s: %d\n", row.name, amount)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&cancel, "cancel", false, "cancel the escrow instead of fulfilling it")
	return cmd
}
