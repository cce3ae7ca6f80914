package main

import (
	"crypto/sha256"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/errors"
	"github.com/blueshift-labs/escrow/host"
)

const envPrefix = "ESCROWCTL"

// defaultIdentity is a stable placeholder address for a named role, used
// when no identity is configured.
func defaultIdentity(label string) escrow.Address {
	sum := sha256.Sum256([]byte("escrowctl/" + label))
	return escrow.Address(sum[:])
}

func rootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "escrowctl",
		Short:         "inspect and exercise the escrow program",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("program-id", defaultIdentity("program").String(), "escrow program identity (base58)")
	flags.String("token-program-id", defaultIdentity("token-program").String(), "asset program identity (base58)")
	flags.Uint64("rent-base", host.DefaultRentPolicy.BasePrice, "base price of the minimum persistent balance")
	flags.Uint64("rent-byte", host.DefaultRentPolicy.BytePrice, "per-byte price of the minimum persistent balance")
	cobra.CheckErr(v.BindPFlags(flags))

	cmd.AddCommand(
		deriveCmd(v),
		decodeRecordCmd(v),
		encodeCreateCmd(v),
		demoCmd(v),
	)
	return cmd
}

type config struct {
	ProgramID      escrow.Address
	TokenProgramID escrow.Address
	Rent           host.RentPolicy
}

func loadConfig(v *viper.Viper) (*config, error) {
	programID, err := escrow.ParseAddress(v.GetString("program-id"))
	if err != nil {
		return nil, errors.Wrap(err, "program-id")
	}
	tokenProgramID, err := escrow.ParseAddress(v.GetString("token-program-id"))
	if err != nil {
		return nil, errors.Wrap(err, "token-program-id")
	}
	return &config{
		ProgramID:      programID,
		TokenProgramID: tokenProgramID,
		Rent: host.RentPolicy{
			BasePrice: v.GetUint64("rent-base"),
			BytePrice: v.GetUint64("rent-byte"),
		},
	}, nil
}
