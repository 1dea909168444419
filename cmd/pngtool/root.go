package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cocosip/go-png-codec/deflate"
	"github.com/cocosip/go-png-codec/dicomexport"
	"github.com/cocosip/go-png-codec/logging"
	"github.com/cocosip/go-png-codec/oops"
	"github.com/cocosip/go-png-codec/png"
)

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "pngtool",
		Short:         "Inspect, decode and re-encode PNG files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return oops.New(err, "bad --log-level")
			}
			logging.Init(cmd.ErrOrStderr(), level)
			png.SetLogger(logging.Component("png"))
			deflate.SetLogger(logging.Component("deflate"))
			dicomexport.SetLogger(logging.Component("dicomexport"))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "trace, debug, info, warn or error")

	root.AddCommand(
		newInspectCommand(),
		newDecodeCommand(),
		newRecodeCommand(),
		newConvertCommand(),
		newDicomCommand(),
		newCodecsCommand(),
	)
	return root
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.New(err, "reading %s", path)
	}
	return data, nil
}

func writeOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return oops.New(err, "writing %s", path)
	}
	logging.Info().Str("file", path).Int("bytes", len(data)).Msg("wrote")
	return nil
}
