// Package logging builds the zap logger shared by every component: a console
// core on stderr teed with a size-rotated JSON file.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the active log file inside the logs directory.
const FileName = "deskpilot.log"

// Options configures New.
type Options struct {
	// Level applies to the file core; the console shows warnings and above
	// unless Verbose is set.
	Level      string
	JSON       bool
	Verbose    bool
	Dir        string
	MaxSizeMB  int
	MaxBackups int

	// Console defaults to os.Stderr
	Console io.Writer
}

// Logger is a zap logger that owns its rotating file.
type Logger struct {
	*zap.Logger
	file *lumberjack.Logger
}

// New creates the logger. An empty Dir disables the file core.
func New(opts Options) (*Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	consoleLevel := zapcore.WarnLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
		consoleLevel = zapcore.DebugLevel
	}
	if consoleLevel < level {
		consoleLevel = level
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	if opts.JSON {
		consoleEncoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(console)), consoleLevel),
	}

	var file *lumberjack.Logger
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, err
		}
		file = &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, FileName),
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 5),
		}
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(file), level))
	}

	return &Logger{
		Logger: zap.New(zapcore.NewTee(cores...), zap.AddCaller()),
		file:   file,
	}, nil
}

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() error {
	_ = l.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
