package logging

import (
	"fmt"
	"log"

	"github.com/fatih/color"

	"github.com/lockstep-sync/lockstep/pkg/lockstep"
)

// emitCallDepth is the call depth handed to the log package so that
// file/line information (when enabled on the standard logger) points at the
// Logger method's caller rather than at the emit helper.
const emitCallDepth = 3

// decorators colorizes rendered lines by severity. Levels without an entry
// are emitted undecorated.
var decorators = map[Level]func(format string, v ...interface{}) string{
	LevelWarn:  color.YellowString,
	LevelError: color.RedString,
}

// Logger writes leveled, prefixed lines through the standard log package,
// respecting any flags set on that logger. A nil Logger is valid and
// discards everything. Loggers are safe for concurrent usage.
type Logger struct {
	// prefix is the logger's name chain, or empty for the root.
	prefix string
	// level is the maximum level the logger admits.
	level Level
}

// NewLogger creates a logger admitting output up to the specified level.
func NewLogger(level Level) *Logger {
	return &Logger{level: level}
}

// defaultLevel computes the level for the process-wide root logger.
func defaultLevel() Level {
	if lockstep.DebugEnabled {
		return LevelDebug
	}
	return LevelInfo
}

// RootLogger is the process-wide root logger. Hosts may replace it (e.g.
// from a command-line flag) before handing out subloggers.
var RootLogger = NewLogger(defaultLevel())

// Sublogger creates a logger whose lines carry the parent's prefix extended
// by the specified name.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{prefix: prefix, level: l.level}
}

// emit renders and writes a single line, if the logger and its level admit
// it. All logging methods route through this helper.
func (l *Logger) emit(level Level, line string) {
	if l == nil || level > l.level {
		return
	}
	if decorate := decorators[level]; decorate != nil {
		line = decorate("%s", line)
	}
	if l.prefix != "" {
		line = "[" + l.prefix + "] " + line
	}
	log.Output(emitCallDepth, line)
}

// Print logs informational output with semantics equivalent to fmt.Print.
func (l *Logger) Print(v ...interface{}) {
	l.emit(LevelInfo, fmt.Sprint(v...))
}

// Printf logs informational output with semantics equivalent to fmt.Printf.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.emit(LevelInfo, fmt.Sprintf(format, v...))
}

// Println logs informational output with semantics equivalent to
// fmt.Println.
func (l *Logger) Println(v ...interface{}) {
	l.emit(LevelInfo, fmt.Sprintln(v...))
}

// Debug logs debugging output with semantics equivalent to fmt.Print.
func (l *Logger) Debug(v ...interface{}) {
	l.emit(LevelDebug, fmt.Sprint(v...))
}

// Debugf logs debugging output with semantics equivalent to fmt.Printf.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.emit(LevelDebug, fmt.Sprintf(format, v...))
}

// Warn logs an error as a warning.
func (l *Logger) Warn(err error) {
	l.emit(LevelWarn, fmt.Sprintf("Warning: %v", err))
}

// Warnf logs a formatted warning.
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.emit(LevelWarn, "Warning: "+fmt.Sprintf(format, v...))
}

// Error logs an error.
func (l *Logger) Error(err error) {
	l.emit(LevelError, fmt.Sprintf("Error: %v", err))
}

// Errorf logs a formatted error.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.emit(LevelError, "Error: "+fmt.Sprintf(format, v...))
}
