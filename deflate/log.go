package deflate

import "github.com/rs/zerolog"

var logger = zerolog.Nop()

// SetLogger sets the logger used for block level tracing. Messages are
// written at debug level; the default logger discards everything.
func SetLogger(l zerolog.Logger) {
	logger = l
}
