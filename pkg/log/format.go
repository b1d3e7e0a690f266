package log

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/sirupsen/logrus"
)

// Format names accepted by --log-format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var levelStyles = map[Level]string{
	ErrorLevel: "red",
	WarnLevel:  "yellow",
	InfoLevel:  "green",
	DebugLevel: "blue+h",
	TraceLevel: "white",
}

const timestampStyle = "black+h"

// TextFormatter prints `HH:MM:SS LVL message key=value` lines, coloured when enabled.
type TextFormatter struct {
	DisableColors bool
	colors        map[Level]func(string) string
	timestamp     func(string) string
}

// NewTextFormatter returns a TextFormatter with colours enabled only when stderr is a terminal.
func NewTextFormatter() *TextFormatter {
	formatter := &TextFormatter{
		DisableColors: !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()),
		colors:        make(map[Level]func(string) string, len(levelStyles)),
		timestamp:     ansi.ColorFunc(timestampStyle),
	}

	for level, style := range levelStyles {
		formatter.colors[level] = ansi.ColorFunc(style)
	}

	return formatter
}

// Format implements logrus.Formatter.
func (formatter *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	buf := entry.Buffer
	if buf == nil {
		buf = new(bytes.Buffer)
	}

	level := FromLogrusLevel(entry.Level)
	timestamp := entry.Time.Format(time.TimeOnly)
	levelName := level.ShortName()

	if !formatter.DisableColors {
		timestamp = formatter.timestamp(timestamp)
		if colorize, ok := formatter.colors[level]; ok {
			levelName = colorize(levelName)
		}
	}

	fmt.Fprintf(buf, "%s %s %s", timestamp, levelName, strings.TrimRight(entry.Message, "\n"))

	fields := Fields(entry.Data)
	for _, key := range fields.Keys() {
		fmt.Fprintf(buf, " %s=%v", key, fields[key])
	}

	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

// NewFormatter returns the logrus formatter for the given format name.
func NewFormatter(name string, disableColors bool) (logrus.Formatter, error) {
	switch strings.ToLower(name) {
	case "", FormatText:
		formatter := NewTextFormatter()
		formatter.DisableColors = formatter.DisableColors || disableColors

		return formatter, nil
	case FormatJSON:
		return &logrus.JSONFormatter{TimestampFormat: time.RFC3339}, nil
	}

	return nil, errors.Errorf("invalid log format %q, supported formats: %s, %s", name, FormatText, FormatJSON)
}
