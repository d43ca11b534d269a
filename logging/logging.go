// Package logging builds the zerolog logger used by a merge run.
//
// Events go to the console and, for error level only, to an append-only log
// file whose lines read "[2006-01-02 15:04:05] [ERROR] message key=value".
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// FileTimeFormat is the local timestamp layout of log file lines.
const FileTimeFormat = "2006-01-02 15:04:05"

// Options configures the logger.
type Options struct {
	Level   string
	Format  string
	Console io.Writer
	LogFile string
	NoColor bool
	RunID   string
}

// New constructs the run logger. The returned closer releases the log file
// and is never nil.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	var console io.Writer = os.Stdout
	if opts.Console != nil {
		console = opts.Console
	}
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		console = zerolog.ConsoleWriter{Out: console, NoColor: opts.NoColor, TimeFormat: "15:04:05"}
	case "json":
	default:
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	writers := []io.Writer{console}
	var closer io.Closer = nopCloser{}
	if path := strings.TrimSpace(opts.LogFile); path != "" {
		file, err := openAppend(path)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
		writers = append(writers, errorsOnly{w: NewFileWriter(file)})
		closer = file
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(parseLevel(opts.Level)).
		With().Timestamp()
	if opts.RunID != "" {
		ctx = ctx.Str("run_id", opts.RunID)
	}
	return ctx.Logger(), closer, nil
}

// NewFileWriter renders events in the plain log file line format.
func NewFileWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		TimeFormat: "[" + FileTimeFormat + "]",
		PartsOrder: []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: func(i interface{}) string {
			if s, ok := i.(string); ok && s != "" {
				return "[" + strings.ToUpper(s) + "]"
			}
			return "[ERROR]"
		},
		FieldsExclude: []string{"run_id"},
	}
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "info", "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}

func openAppend(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

// errorsOnly forwards error and fatal events and drops the rest.
type errorsOnly struct {
	w io.Writer
}

func (e errorsOnly) Write(p []byte) (int, error) {
	return e.w.Write(p)
}

func (e errorsOnly) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.ErrorLevel || level == zerolog.NoLevel {
		return len(p), nil
	}
	return e.w.Write(p)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
