package conf

import (
	"github.com/sirupsen/logrus"
)

// Level is the verbosity threshold the archiving job runs with.
type Level int

const (
	LevelOff Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

var levelNames = map[string]Level{
	"OFF":      LevelOff,
	"DEBUG":    LevelDebug,
	"INFO":     LevelInfo,
	"WARN":     LevelWarn,
	"ERROR":    LevelError,
	"CRITICAL": LevelCritical,
}

// ParseLevel maps a configuration literal onto a Level. Matching is
// case-sensitive: "info" is a misconfiguration, not INFO.
func ParseLevel(value string) (Level, error) {
	level, ok := levelNames[value]
	if !ok {
		return LevelOff, &KeyError{Key: KeyLogLevel, Value: value, Err: ErrInvalidEnumValue}
	}
	return level, nil
}

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "OFF"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	}
	return "UNKNOWN"
}

// Enabled reports whether the job should emit log output at all.
// OFF has no logrus counterpart; callers discard the logger output
// instead of asking for a level.
func (l Level) Enabled() bool {
	return l != LevelOff
}

// LogrusLevel maps onto the logrus scale. Only meaningful when
// Enabled returns true.
func (l Level) LogrusLevel() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelInfo:
		return logrus.InfoLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	case LevelCritical:
		return logrus.FatalLevel
	}
	return logrus.PanicLevel
}
