package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the diagnostics handler.
type Options struct {
	// File, when set, receives the log through a size-rotated writer
	// instead of stdout.
	File    string
	IsDev   bool
	Verbose bool
}

// Init installs the process-wide slog logger and returns the writer behind
// it so main can close a rotated file on exit.
func Init(opts Options) io.WriteCloser {
	level := slog.LevelInfo
	if opts.Verbose || opts.IsDev {
		level = slog.LevelDebug
	}

	hopts := &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	}

	out := output(opts.File)

	var handler slog.Handler
	if opts.IsDev {
		handler = slog.NewTextHandler(out, hopts)
	} else {
		handler = slog.NewJSONHandler(out, hopts)
	}

	slog.SetDefault(slog.New(handler))

	return out
}

// SetInstance tags every later record of the default logger with id.
func SetInstance(id string) {
	slog.SetDefault(slog.Default().With("instance", id))
}

func output(file string) io.WriteCloser {
	if file == "" {
		return nopCloser{os.Stdout}
	}
	return &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
		LocalTime:  true,
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
