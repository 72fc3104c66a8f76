// backend-go/pkg/logger/logger.go
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	// Log is the global logger instance
	Log zerolog.Logger
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	// Default to console output with color
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}

	setOutput(output)
}

// UseJSON switches to structured JSON output, e.g. for release mode.
func UseJSON(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	setOutput(w)
}

func setOutput(w io.Writer) {
	Log = zerolog.New(w).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Caller().
		Logger()
	// Packages log through github.com/rs/zerolog/log; keep it on the same sink.
	log.Logger = Log
}

// SetLevel sets the log level
func SetLevel(levelStr string) {
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil || levelStr == "" {
		Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
	log.Logger = Log
}
