package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cocosip/go-png-codec/oops"
	"github.com/cocosip/go-png-codec/png"
)

func newInspectCommand() *cobra.Command {
	var ignoreCRC bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the header and chunk list of a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			hdr, err := png.InspectWithOptions(data, &png.InspectOptions{IgnoreCRC: ignoreCRC})
			if err != nil {
				return oops.New(err, "inspecting %s", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "size:       %dx%d\n", hdr.Width, hdr.Height)
			fmt.Fprintf(out, "color type: %s (%d)\n", hdr.ColorType, hdr.ColorType)
			fmt.Fprintf(out, "bit depth:  %d\n", hdr.BitDepth)
			fmt.Fprintf(out, "interlaced: %v\n", hdr.Interlaced())

			chunks, err := png.ListChunks(data)
			for _, c := range chunks {
				status := "ok"
				if !c.CRCValid {
					status = "BAD CRC"
				}
				fmt.Fprintf(out, "%s  offset %8d  length %8d  %s\n", c.Type, c.Offset, c.Length, status)
			}
			if err != nil {
				return oops.New(err, "listing chunks of %s", args[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&ignoreCRC, "ignore-crc", false, "do not verify the IHDR CRC")
	return cmd
}
