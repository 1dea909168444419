package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cocosip/go-png-codec/deflate"
	"github.com/cocosip/go-png-codec/lz77"
	"github.com/cocosip/go-png-codec/oops"
	"github.com/cocosip/go-png-codec/png"
)

// encodeFlags are shared by the commands that write PNGs
type encodeFlags struct {
	filter    string
	interlace bool
	blockType string
	window    int
	chain     int
}

func (f *encodeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.filter, "filter", "minsum", "minsum, entropy, none, sub, up, average or paeth")
	cmd.Flags().BoolVar(&f.interlace, "interlace", false, "write Adam7 interlaced data")
	cmd.Flags().StringVar(&f.blockType, "block-type", "dynamic", "stored, fixed or dynamic")
	cmd.Flags().IntVar(&f.window, "window", lz77.MaxWindowSize, "LZ77 window size, a power of two up to 32768")
	cmd.Flags().IntVar(&f.chain, "chain", 4096, "maximum hash chain length, 0 for unbounded")
}

func (f *encodeFlags) options() (*png.EncodeOptions, error) {
	opts := png.DefaultEncodeOptions()
	strategy, err := png.ParseFilterStrategy(f.filter)
	if err != nil {
		return nil, oops.New(err, "bad --filter")
	}
	bt, err := deflate.ParseBlockType(f.blockType)
	if err != nil {
		return nil, oops.New(err, "bad --block-type")
	}
	opts.Filter = strategy
	opts.Interlace = f.interlace
	opts.Deflate = deflate.DefaultParameters().
		WithBlockType(bt).
		WithWindowSize(f.window).
		WithMaxChainLength(f.chain)
	if err := opts.Validate(); err != nil {
		return nil, oops.New(err, "bad compression settings")
	}
	return opts, nil
}

func newRecodeCommand() *cobra.Command {
	var (
		flags      encodeFlags
		stripAlpha bool
		ignoreCRC  bool
	)

	cmd := &cobra.Command{
		Use:   "recode IN.png OUT.png",
		Short: "Re-encode a PNG, keeping its pixels and metadata",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}

			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			dopts := png.DefaultDecodeOptions()
			dopts.ColorConvert = false
			dopts.IgnoreCRC = ignoreCRC
			img, err := png.DecodeWithOptions(data, dopts)
			if err != nil {
				return oops.New(err, "decoding %s", args[0])
			}

			opts.Input, opts.Output = img.Mode, img.Mode
			opts.AutoLeaveOutAlphaChannel = stripAlpha
			opts.Metadata = img.Metadata
			out, err := png.Encode(img.Pix, img.Width, img.Height, opts)
			if err != nil {
				return oops.New(err, "encoding %s", args[1])
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d -> %d bytes\n", len(data), len(out))
			return writeOutput(args[1], out)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&stripAlpha, "strip-alpha", false, "drop the alpha channel of 8-bit images that are fully opaque")
	cmd.Flags().BoolVar(&ignoreCRC, "ignore-crc", false, "do not verify chunk CRCs")
	return cmd
}
