package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cocosip/go-png-codec/logging"
	"github.com/cocosip/go-png-codec/oops"
	"github.com/cocosip/go-png-codec/png"
)

var outputFormats = map[string]png.ColorMode{
	"rgba":      png.RGBA8(),
	"rgb":       png.RGB8(),
	"grey":      png.Grey8(),
	"greyalpha": png.GreyAlpha8(),
}

func newDecodeCommand() *cobra.Command {
	var (
		format    string
		ignoreCRC bool
	)

	cmd := &cobra.Command{
		Use:   "decode IN.png OUT.raw",
		Short: "Decode a PNG to a raw pixel buffer",
		Long: "Decode a PNG to a raw pixel buffer. --format raw keeps the file's own " +
			"layout (packed sub-byte samples, big-endian 16-bit samples).",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := png.DefaultDecodeOptions()
			opts.IgnoreCRC = ignoreCRC
			if format == "raw" {
				opts.ColorConvert = false
			} else {
				mode, ok := outputFormats[format]
				if !ok {
					return oops.New(nil, "unknown format %q", format)
				}
				opts.Output = mode
			}

			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			img, err := png.DecodeWithOptions(data, opts)
			if err != nil {
				return oops.New(err, "decoding %s", args[0])
			}

			logging.Debug().
				Str("file_mode", img.FileMode.String()).
				Str("mode", img.Mode.String()).
				Msg("decoded")
			fmt.Fprintf(cmd.OutOrStdout(), "%dx%d %s\n", img.Width, img.Height, img.Mode)
			return writeOutput(args[1], img.Pix)
		},
	}
	cmd.Flags().StringVar(&format, "format", "rgba", "rgba, rgb, grey, greyalpha or raw")
	cmd.Flags().BoolVar(&ignoreCRC, "ignore-crc", false, "do not verify chunk CRCs")
	return cmd
}
