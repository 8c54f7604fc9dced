package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

type Options struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Prefix string `yaml:"-"`
}

// New builds a logger writing to Options.File, or to w when no file is set.
// The returned closer releases the file and is never nil.
func New(opts Options, w io.Writer) (*log.Logger, io.Closer, error) {
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}

	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          opts.Prefix,
	})

	if opts.Level != "" {
		lvl, err := log.ParseLevel(opts.Level)
		if err != nil {
			closer.Close()
			return nil, nil, err
		}
		l.SetLevel(lvl)
	}
	return l, closer, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	l := log.New(io.Discard)
	l.SetLevel(log.FatalLevel)
	return l
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
