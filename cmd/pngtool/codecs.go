package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cocosip/go-png-codec/codec"
	_ "github.com/cocosip/go-png-codec/png"
	_ "github.com/cocosip/go-png-codec/zlib"
)

func newCodecsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "codecs",
		Short: "List the registered codecs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range codec.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", c.Name(), c.UID())
			}
			return nil
		},
	}
}
