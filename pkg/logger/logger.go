package logger

import (
	"io"
	"os"
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	log     *zap.Logger
	closeFn func() error
)

// L returns the process logger, or nil before Initialize/InitFallback.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// SetLogger installs l as the process logger and as the zap and otelzap globals.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()

	zap.ReplaceGlobals(l)
	otelzap.ReplaceGlobals(otelzap.New(l))
}

// New builds a logger writing "LEVEL: message" lines to console and, when
// opts.File is set, JSON lines to that file. The returned closer releases the file.
func New(opts Options, console io.Writer) (*zap.Logger, func() error, error) {
	level, err := ParseLogLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(ConsoleEncoderConfig()), zapcore.Lock(zapcore.AddSync(console)), level),
	}

	closer := func() error { return nil }
	if opts.File != "" {
		writer, fileClose, err := GetLogFileWriter(opts.File)
		if err != nil {
			return nil, nil, err
		}
		closer = fileClose
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(FileEncoderConfig()), writer, level))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zapcore.ErrorLevel))
	return l, closer, nil
}

// Initialize replaces the process logger with one built from opts.
func Initialize(opts Options) error {
	l, closer, err := New(opts, os.Stderr)
	if err != nil {
		return err
	}

	previous := swapCloser(closer)
	SetLogger(l)
	if previous != nil {
		_ = previous()
	}

	l.Debug("Logger initialized",
		zap.String("log_level", opts.Level),
		zap.String("log_file", opts.File))
	return nil
}

// Sync flushes buffered entries and closes the log file, if any.
func Sync() error {
	l := L()
	if l == nil {
		return nil
	}
	err := l.Sync()
	if closer := swapCloser(nil); closer != nil {
		if closeErr := closer(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

func swapCloser(next func() error) func() error {
	mu.Lock()
	defer mu.Unlock()
	previous := closeFn
	closeFn = next
	return previous
}
