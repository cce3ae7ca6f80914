package main

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/errors"
	"github.com/blueshift-labs/escrow/host"
	"github.com/blueshift-labs/escrow/program"
	"github.com/blueshift-labs/escrow/token"
)

func deriveCmd(v *viper.Viper) *cobra.Command {
	var assetA string

	cmd := &cobra.Command{
		Use:   "derive <maker> <seed>",
		Short: "derive the record address of an escrow, and its vault when --asset-a is given",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(v)
			if err != nil {
				return err
			}
			maker, err := escrow.ParseAddress(args[0])
			if err != nil {
				return errors.Wrap(err, "maker")
			}
			seed, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return errors.Wrap(errors.ErrInput, "seed must be an unsigned integer")
			}

			deriver := host.Deriver{}
			record, bump, err := program.RecordAddress(deriver, conf.ProgramID, maker, seed)
			if err != nil {
				return err
			}
			cmd.Printf("record: %s\n", record)
			cmd.Printf("bump:   %d\n", bump)

			if assetA == "" {
				return nil
			}
			asset, err := escrow.ParseAddress(assetA)
			if err != nil {
				return errors.Wrap(err, "asset-a")
			}
			svc := token.Service{ProgramID: conf.TokenProgramID, Derive: deriver}
			vault, _, err := svc.HoldingAddress(record, asset)
			if err != nil {
				return err
			}
			cmd.Printf("vault:  %s\n", vault)
			return nil
		},
	}
	cmd.Flags().StringVar(&assetA, "asset-a", "", "deposit asset-type address; derives the vault as well")
	return cmd
}
