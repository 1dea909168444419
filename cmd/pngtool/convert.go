package main

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/cocosip/go-png-codec/oops"
	"github.com/cocosip/go-png-codec/png"
)

func init() {
	image.RegisterFormat("png", "\x89PNG\r\n\x1a\n", png.DecodeImage, png.DecodeConfig)
}

func newConvertCommand() *cobra.Command {
	var flags encodeFlags

	cmd := &cobra.Command{
		Use:   "convert IN OUT.png",
		Short: "Convert a BMP, TIFF, GIF, JPEG or PNG image to PNG",
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
			m, format, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				return oops.New(err, "decoding %s", args[0])
			}

			var buf bytes.Buffer
			if err := png.EncodeImage(&buf, m, opts); err != nil {
				return oops.New(err, "encoding %s", args[1])
			}

			b := m.Bounds()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %dx%d -> png %d bytes\n", format, b.Dx(), b.Dy(), buf.Len())
			return writeOutput(args[1], buf.Bytes())
		},
	}
	flags.register(cmd)
	return cmd
}
