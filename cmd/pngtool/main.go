// Command pngtool inspects, decodes and re-encodes PNG files and exports
// DICOM frames as PNG.
package main

import (
	"os"

	"github.com/cocosip/go-png-codec/logging"
)

func main() {
	defer logging.LogPanics(nil)

	if err := NewRootCommand().Execute(); err != nil {
		logging.Error().Err(err).Msg("pngtool failed")
		os.Exit(1)
	}
}
