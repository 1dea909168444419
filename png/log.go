package png

import "github.com/rs/zerolog"

var logger = zerolog.Nop()

// SetLogger sets the logger used for chunk and filter tracing at debug level
func SetLogger(l zerolog.Logger) {
	logger = l
}
