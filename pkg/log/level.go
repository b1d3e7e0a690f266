package log

import (
	"strings"

	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/sirupsen/logrus"
)

// These are the supported logging levels, from least to most verbose.
const (
	// ErrorLevel is used for errors that should definitely be noted.
	ErrorLevel Level = iota
	// WarnLevel is used for non-critical entries that deserve eyes.
	WarnLevel
	// InfoLevel is used for general progress of a lifecycle operation.
	InfoLevel
	// DebugLevel is used for provider calls and filtered resources.
	DebugLevel
	// TraceLevel is used for stack traces and raw command output.
	TraceLevel
)

// AllLevels exposes all logging levels.
var AllLevels = Levels{ErrorLevel, WarnLevel, InfoLevel, DebugLevel, TraceLevel}

var levelNames = map[Level]string{
	ErrorLevel: "error",
	WarnLevel:  "warn",
	InfoLevel:  "info",
	DebugLevel: "debug",
	TraceLevel: "trace",
}

var logrusLevels = map[Level]logrus.Level{
	ErrorLevel: logrus.ErrorLevel,
	WarnLevel:  logrus.WarnLevel,
	InfoLevel:  logrus.InfoLevel,
	DebugLevel: logrus.DebugLevel,
	TraceLevel: logrus.TraceLevel,
}

// Level type
type Level uint32

// ParseLevel takes a string and returns the Level constant.
func ParseLevel(str string) (Level, error) {
	for level, name := range levelNames {
		if strings.EqualFold(name, str) {
			return level, nil
		}
	}

	return Level(0), errors.Errorf("invalid level %q, supported levels: %s", str, AllLevels)
}

// String implements fmt.Stringer.
func (level Level) String() string {
	return levelNames[level]
}

// ShortName returns the three-letter name printed by the text formatter.
func (level Level) ShortName() string {
	name := level.String()
	if len(name) > 3 {
		name = name[:3]
	}

	return strings.ToUpper(name)
}

// ToLogrusLevel converts the level to its logrus equivalent.
func (level Level) ToLogrusLevel() logrus.Level {
	if lvl, ok := logrusLevels[level]; ok {
		return lvl
	}

	return logrus.InfoLevel
}

// FromLogrusLevel converts a logrus level, clamping anything more severe than error.
func FromLogrusLevel(lvl logrus.Level) Level {
	for level, logrusLevel := range logrusLevels {
		if logrusLevel == lvl {
			return level
		}
	}

	return ErrorLevel
}

type Levels []Level

func (levels Levels) Names() []string {
	strs := make([]string, len(levels))

	for i, level := range levels {
		strs[i] = level.String()
	}

	return strs
}

func (levels Levels) String() string {
	return strings.Join(levels.Names(), ", ")
}
