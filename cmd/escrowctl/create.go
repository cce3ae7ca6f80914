package main

import (
	"encoding/hex"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/errors"
	"github.com/blueshift-labs/escrow/program"
)

func encodeCreateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "encode-create <seed> <receive-amount> <deposit-amount>",
		Short: "encode a create payload (tag byte included) as hex",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums := make([]uint64, 3)
			for i, arg := range args {
				n, err := strconv.ParseUint(arg, 10, 64)
				if err != nil {
					return errors.Wrapf(errors.ErrInput, "%q is not an unsigned integer", arg)
				}
				nums[i] = n
			}
			msg := program.CreateMsg{
				Seed:          nums[0],
				ReceiveAmount: nums[1],
				DepositAmount: nums[2],
			}
			if err := msg.Validate(); err != nil {
				return err
			}
			payload, err := msg.Marshal()
			if err != nil {
				return err
			}
			cmd.Println(hex.EncodeToString(append([]byte{escrow.TagCreate}, payload...)))
			return nil
		},
	}
}
