// Package logging configures the application logger. Console output is
// human readable on a TTY and JSON otherwise, with an optional rotated
// file sink under the state directory.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls how the logger is built.
type Options struct {
	// Level is a zerolog level name, debug, info, warn or error.
	Level string
	// FilePath enables a rotated file sink when non-empty.
	FilePath string
}

// New builds the application logger.
func New(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	writers := []io.Writer{consoleWriter()}
	if opts.FilePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		})
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
}

// consoleWriter picks pretty output on an interactive terminal and
// plain JSON when stderr is redirected.
func consoleWriter() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return os.Stderr
}
