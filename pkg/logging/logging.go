// Package logging builds the loggers used by the armemit commands.
package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Manu343726/armemit/pkg/utils"
	slogmulti "github.com/samber/slog-multi"
)

var ErrInvalidLevel = errors.New("invalid log level")

type Settings struct {
	// debug, info, warn or error. Empty means info
	Level string
	// Text records go here
	Console io.Writer
	// Optional file receiving the same records as JSON
	File string
}

// Logger wraps a slog.Logger together with the file it may have opened
type Logger struct {
	*slog.Logger
	file *os.File
}

func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level

	if strings.TrimSpace(name) == "" {
		return slog.LevelInfo, nil
	}

	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return level, utils.MakeError(ErrInvalidLevel, "'%v'", name)
	}

	return level, nil
}

// New fans records out to a text handler on the console and, when a log file
// is configured, to a JSON handler writing to that file
func New(settings Settings) (*Logger, error) {
	level, err := ParseLevel(settings.Level)
	if err != nil {
		return nil, err
	}

	options := &slog.HandlerOptions{Level: level}
	console := settings.Console

	if console == nil {
		console = os.Stderr
	}

	handlers := []slog.Handler{slog.NewTextHandler(console, options)}
	result := &Logger{}

	if settings.File != "" {
		result.file, err = os.OpenFile(settings.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}

		handlers = append(handlers, slog.NewJSONHandler(result.file, options))
	}

	result.Logger = slog.New(slogmulti.Fanout(handlers...))
	return result, nil
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}

	return l.file.Close()
}
