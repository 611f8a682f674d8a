package internal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	SUCCESS
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	case SUCCESS:
		return "SUCCESS"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a case-insensitive level name to a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG, nil
	case "", "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARNING, nil
	case "ERROR":
		return ERROR, nil
	case "SUCCESS":
		return SUCCESS, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", name)
}

type Logger struct {
	mu     *sync.Mutex
	level  *LogLevel
	writer io.Writer
	prefix string
}

var (
	defaultLogger *Logger
	once          sync.Once
)

func NewLogger(out io.Writer, level LogLevel) *Logger {
	return &Logger{
		mu:     &sync.Mutex{},
		level:  &level,
		writer: out,
	}
}

func InitDefaultLogger(level LogLevel) {
	once.Do(func() {
		defaultLogger = NewLogger(os.Stdout, level)
	})
}

func GetDefaultLogger() *Logger {
	InitDefaultLogger(INFO)
	return defaultLogger
}

func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.level = level
}

// WithPrefix returns a logger sharing l's writer and level that tags every
// entry with prefix, e.g. an export id.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{
		mu:     l.mu,
		level:  l.level,
		writer: l.writer,
		prefix: prefix,
	}
}

func (l *Logger) logInternal(level LogLevel, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < *l.level {
		return
	}

	timestamp := time.Now().Format(time.DateTime)
	msg := strings.TrimRight(fmt.Sprintf(format, v...), "\n")

	var logEntry string
	if l.prefix != "" {
		logEntry = fmt.Sprintf("%s [%s] (%s) %s\n", timestamp, level, l.prefix, msg)
	} else {
		logEntry = fmt.Sprintf("%s [%s] %s\n", timestamp, level, msg)
	}

	_, _ = l.writer.Write([]byte(logEntry))
}

func (l *Logger) Debug(format string, v ...any) {
	l.logInternal(DEBUG, format, v...)
}

func (l *Logger) Info(format string, v ...any) {
	l.logInternal(INFO, format, v...)
}

func (l *Logger) Warn(format string, v ...any) {
	l.logInternal(WARNING, format, v...)
}

func (l *Logger) Error(format string, v ...any) {
	l.logInternal(ERROR, format, v...)
}

func (l *Logger) Success(format string, v ...any) {
	l.logInternal(SUCCESS, format, v...)
}

func Debug(format string, v ...any) {
	GetDefaultLogger().Debug(format, v...)
}

func Info(format string, v ...any) {
	GetDefaultLogger().Info(format, v...)
}

func Warn(format string, v ...any) {
	GetDefaultLogger().Warn(format, v...)
}

func Error(format string, v ...any) {
	GetDefaultLogger().Error(format, v...)
}

func Success(format string, v ...any) {
	GetDefaultLogger().Success(format, v...)
}
