package log

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level defines the verbosity of a log message.
type Level uint32

const (
	// ErrorLevel is used for errors that should definitely be noted.
	ErrorLevel Level = Level(logrus.ErrorLevel)
	// WarnLevel is used for non-critical entries that deserve eyes.
	WarnLevel Level = Level(logrus.WarnLevel)
	// InfoLevel is used for general operational entries about what's going on.
	InfoLevel Level = Level(logrus.InfoLevel)
	// DebugLevel is used for verbose logging, usually only enabled when debugging.
	DebugLevel Level = Level(logrus.DebugLevel)
	// TraceLevel designates finer-grained informational events than Debug.
	TraceLevel Level = Level(logrus.TraceLevel)
)

// AllLevels is an ordered slice of all supported levels.
var AllLevels = []Level{ErrorLevel, WarnLevel, InfoLevel, DebugLevel, TraceLevel}

// String implements fmt.Stringer.
func (level Level) String() string {
	return logrus.Level(level).String()
}

// ParseLevel takes a string and returns the matching Level.
func ParseLevel(str string) (Level, error) {
	for _, level := range AllLevels {
		if strings.EqualFold(level.String(), str) {
			return level, nil
		}
	}

	return InfoLevel, fmt.Errorf("invalid level %q, supported levels: %v", str, AllLevels)
}
