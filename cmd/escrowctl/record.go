package main

import (
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blueshift-labs/escrow/errors"
	"github.com/blueshift-labs/escrow/state"
)

func decodeRecordCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "decode-record [hex]",
		Short: "decode a hex-encoded escrow record, from the argument or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			} else {
				raw, err := io.ReadAll(os.Stdin)
				if err != nil {
					return errors.Wrap(errors.ErrInput, err.Error())
				}
				input = string(raw)
			}
			data, err := hex.DecodeString(strings.TrimSpace(input))
			if err != nil {
				return errors.Wrap(errors.ErrInput, err.Error())
			}

			rec, err := state.Unmarshal(data)
			if err != nil {
				return err
			}
			cmd.Printf("seed:           %d\n", rec.Seed)
			cmd.Printf("maker:          %s\n", rec.Maker)
			cmd.Printf("asset a:        %s\n", rec.AssetA)
			cmd.Printf("asset b:        %s\n", rec.AssetB)
			cmd.Printf("receive amount: %d\n", rec.ReceiveAmount)
			cmd.Printf("bump:           %d\n", rec.Bump)
			return nil
		},
	}
}
