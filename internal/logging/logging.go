package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls the logger built by New.
type Options struct {
	// Level is a zerolog level name; empty means info.
	Level string
	// Debug forces the debug level regardless of Level.
	Debug bool
	// File, when set, receives JSON lines in addition to the console output.
	File string
	// Console defaults to os.Stdout.
	Console io.Writer
	// NoColor disables ANSI colours on the console writer.
	NoColor bool
}

func init() {
	// [file:line] like the console format expects, without the full path
	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		return filepath.Base(file) + ":" + strconv.Itoa(line)
	}
}

// New returns a logger writing human-readable lines to the console and,
// optionally, JSON to a file. The returned closer releases the file.
func New(opt Options) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if opt.Level != "" {
		lv, err := zerolog.ParseLevel(strings.ToLower(opt.Level))
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("invalid log level %q: %w", opt.Level, err)
		}
		level = lv
	}
	if opt.Debug {
		level = zerolog.DebugLevel
	}

	out := opt.Console
	if out == nil {
		out = os.Stdout
	}
	console := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    opt.NoColor,
		TimeFormat: time.DateTime,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			zerolog.CallerFieldName,
			zerolog.MessageFieldName,
		},
		FormatCaller: func(i any) string {
			if i == nil {
				return ""
			}
			return fmt.Sprintf("[%s] :", i)
		},
	}

	var w io.Writer = console
	var closer io.Closer = nopCloser{}
	if opt.File != "" {
		if err := os.MkdirAll(filepath.Dir(opt.File), 0o755); err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opt.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("open log file: %w", err)
		}
		w = zerolog.MultiLevelWriter(console, f)
		closer = f
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Caller().Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
