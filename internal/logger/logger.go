package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu    sync.Mutex
	out   io.Writer = color.Output
	level           = LevelInfo

	debugColor = color.New(color.FgCyan)
	infoColor  = color.New(color.FgYellow)
	warnColor  = color.New(color.FgMagenta)
	errorColor = color.New(color.FgRed)
	okColor    = color.New(color.FgGreen)
	grayColor  = color.New(color.FgHiBlack)
)

// ParseLevel maps LOG_LEVEL values to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func Debug(format string, args ...interface{}) {
	write(LevelDebug, debugColor, "DEBUG", format, args...)
}

func Info(format string, args ...interface{}) {
	write(LevelInfo, infoColor, "INFO", format, args...)
}

func Warn(format string, args ...interface{}) {
	write(LevelWarn, warnColor, "WARN", format, args...)
}

func Error(format string, args ...interface{}) {
	write(LevelError, errorColor, "ERROR", format, args...)
}

// Request logs one served HTTP request, colored by status class.
func Request(method, path string, status int, duration time.Duration, requestID string) {
	c := okColor
	switch {
	case status >= 500:
		c = errorColor
	case status >= 400:
		c = infoColor
	}
	msg := fmt.Sprintf("%-6s %s %d (%s)", method, path, status, formatDuration(duration))
	if requestID != "" {
		msg += " id=" + requestID
	}
	write(LevelInfo, c, "HTTP", "%s", msg)
}

func write(l Level, c *color.Color, tag, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	grayColor.Fprintf(out, "[%s] ", timestamp)
	c.Fprintf(out, "[%s] %s\n", tag, fmt.Sprintf(format, args...))
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
