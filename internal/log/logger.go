package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"
)

// Level represents log level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// ANSI colours for text mode.
var levelColors = map[Level]string{
	LevelDebug: "\033[90m",
	LevelInfo:  "\033[36m",
	LevelWarn:  "\033[33m",
	LevelError: "\033[31m",
}

const colorReset = "\033[0m"

// Format selects the rendering of log entries.
type Format int

const (
	FormatJSON Format = iota
	FormatText
)

// Logger provides structured logging. A nil *Logger discards everything.
type Logger struct {
	level  Level
	format Format
	color  bool
	output io.Writer
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// NewLogger creates a new logger with the specified level writing to
// stderr. Entries are JSON lines unless stderr is a terminal, in which case
// they are written as coloured text.
func NewLogger(level Level) *Logger {
	l := &Logger{
		level:  level,
		output: os.Stderr,
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		l.format = FormatText
		l.color = true
	}
	return l
}

// SetOutput sets the output writer for the logger. Colour is disabled
// unless w is a terminal.
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
	l.color = false
	if f, ok := w.(*os.File); ok {
		l.color = term.IsTerminal(int(f.Fd()))
	}
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// SetFormat sets the entry format.
func (l *Logger) SetFormat(format Format) {
	l.format = format
}

// log writes a structured log entry
func (l *Logger) log(level Level, message string, fields map[string]interface{}) {
	if l == nil || level < l.level {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     levelNames[level],
		Message:   message,
		Fields:    fields,
	}

	if l.format == FormatText {
		l.writeText(level, entry)
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		// Fallback to plain text if JSON marshaling fails
		fmt.Fprintf(l.output, "[%s] %s: %s\n", entry.Timestamp, entry.Level, message)
		return
	}

	fmt.Fprintln(l.output, string(data))
}

func (l *Logger) writeText(level Level, entry LogEntry) {
	var b strings.Builder
	lvl := fmt.Sprintf("%-5s", entry.Level)
	if l.color {
		lvl = levelColors[level] + lvl + colorReset
	}
	fmt.Fprintf(&b, "%s %s %s", entry.Timestamp, lvl, entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
	}
	fmt.Fprintln(l.output, b.String())
}

// Debug logs a debug message
func (l *Logger) Debug(message string, fields map[string]interface{}) {
	l.log(LevelDebug, message, fields)
}

// Info logs an info message
func (l *Logger) Info(message string, fields map[string]interface{}) {
	l.log(LevelInfo, message, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, fields map[string]interface{}) {
	l.log(LevelWarn, message, fields)
}

// Error logs an error message
func (l *Logger) Error(message string, fields map[string]interface{}) {
	l.log(LevelError, message, fields)
}

// LogParseFailure logs a property string that could not be interpreted.
func (l *Logger) LogParseFailure(format, raw string, err error) {
	fields := map[string]interface{}{
		"format": format,
		"value":  raw,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Warn("could not parse property string", fields)
}

// LogConfigLoad logs a config load event
func (l *Logger) LogConfigLoad(success bool, path string, err error) {
	fields := map[string]interface{}{
		"path": path,
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	if success {
		l.Info("config loaded", fields)
	} else {
		l.Error("config load failed", fields)
	}
}

// LogError logs a general error
func (l *Logger) LogError(component string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["component"] = component
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Error("error occurred", fields)
}

// ParseLevel parses a log level string
func ParseLevel(levelStr string) Level {
	switch levelStr {
	case "DEBUG", "debug":
		return LevelDebug
	case "INFO", "info":
		return LevelInfo
	case "WARN", "warn", "WARNING", "warning":
		return LevelWarn
	case "ERROR", "error":
		return LevelError
	default:
		return LevelInfo
	}
}
