// Package logging builds the process logger
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Params struct {
	Out   io.Writer // defaults to os.Stdout
	Level string
	JSON  bool
	File  string // optional; rotated with lumberjack and written alongside Out
}

// New returns a zerolog logger configured from params. The returned closer
// releases the log file, if one was opened.
func New(params Params) (zerolog.Logger, io.Closer) {
	out := params.Out
	if out == nil {
		out = os.Stdout
	}
	if !params.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	var closer io.Closer = nopCloser{}
	if params.File != "" {
		fileName := params.File
		if !strings.HasSuffix(fileName, ".log") {
			fileName += ".log"
		}
		rotating := &lumberjack.Logger{
			Filename: fileName,
			MaxSize:  50, // megabytes
			Compress: true,
		}
		out = zerolog.MultiLevelWriter(out, rotating)
		closer = rotating
	}

	logger := zerolog.New(out).Level(GetLevel(params.Level)).With().Timestamp().Logger()
	return logger, closer
}

// GetLevel parses a level name, falling back to info
func GetLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
