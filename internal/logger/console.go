// Package logger provides the leveled console logger used across the
// governor's commands. Output is timestamped, thread-safe, and colored
// when attached to a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

// Console writes timestamped, level-filtered log lines.
type Console struct {
	writer   io.Writer
	level    int
	mu       sync.Mutex
	colorize bool
}

// New creates a console logger. Levels: debug, info, warn, error
// (case-insensitive); anything else defaults to info. Color is enabled
// only when the writer is a terminal.
func New(writer io.Writer, level string) *Console {
	return &Console{
		writer:   writer,
		level:    parseLevel(level),
		colorize: isTerminal(writer),
	}
}

func parseLevel(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) && !color.NoColor
}

func (c *Console) log(level int, label string, paint func(a ...interface{}) string, format string, args ...interface{}) {
	if c == nil || c.writer == nil || level < c.level {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stamp := time.Now().Format("15:04:05")
	if c.colorize && paint != nil {
		label = paint(label)
	}
	fmt.Fprintf(c.writer, "[%s] %s %s\n", stamp, label, fmt.Sprintf(format, args...))
}

// Debug logs at debug level.
func (c *Console) Debug(format string, args ...interface{}) {
	c.log(levelDebug, "DEBUG", color.New(color.FgHiBlack).SprintFunc(), format, args...)
}

// Info logs at info level.
func (c *Console) Info(format string, args ...interface{}) {
	c.log(levelInfo, "INFO ", color.New(color.FgCyan).SprintFunc(), format, args...)
}

// Warn logs at warn level.
func (c *Console) Warn(format string, args ...interface{}) {
	c.log(levelWarn, "WARN ", color.New(color.FgYellow).SprintFunc(), format, args...)
}

// Error logs at error level.
func (c *Console) Error(format string, args ...interface{}) {
	c.log(levelError, "ERROR", color.New(color.FgRed).SprintFunc(), format, args...)
}
