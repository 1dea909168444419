package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cocosip/go-png-codec/dicomexport"
	"github.com/cocosip/go-png-codec/oops"
)

func newDicomCommand() *cobra.Command {
	var (
		flags  encodeFlags
		frame  int
		center float64
		width  float64
		keep16 bool
	)

	cmd := &cobra.Command{
		Use:   "dicom IN.dcm OUT.png",
		Short: "Export one frame of a DICOM image as PNG",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			encOpts, err := flags.options()
			if err != nil {
				return err
			}

			f, err := dicomexport.ReadFrame(args[0], frame)
			if err != nil {
				return oops.New(err, "reading frame %d of %s", frame, args[0])
			}
			out, err := dicomexport.ToPNG(f, &dicomexport.Options{
				Window: dicomexport.Window{Center: center, Width: width},
				Keep16: keep16,
				Encode: encOpts,
			})
			if err != nil {
				return oops.New(err, "rendering %s", args[0])
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%dx%d %d-bit %s\n", f.Columns, f.Rows, f.BitsStored, f.Photometric)
			return writeOutput(args[1], out)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&frame, "frame", 0, "frame index")
	cmd.Flags().Float64Var(&center, "window-center", 0, "window center")
	cmd.Flags().Float64Var(&width, "window-width", 0, "window width, 0 for the frame's full range")
	cmd.Flags().BoolVar(&keep16, "keep16", false, "store 16-bit greyscale as 16-bit PNG")
	return cmd
}
