// Package logger writes signed JSON log lines shared by every service and the CLI.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type LogLevel string

const (
	LevelInfo     LogLevel = "INFO"
	LevelWarn     LogLevel = "WARN"
	LevelError    LogLevel = "ERROR"
	LevelSecurity LogLevel = "SECURITY"
)

const (
	EventValidationFailure = "VALIDATION_FAILURE"
	EventLoginSuccess      = "LOGIN_SUCCESS"
	EventLoginFailure      = "LOGIN_FAILURE"
	EventAccessDenied      = "ACCESS_DENIED"
	EventInvalidToken      = "INVALID_TOKEN"
	EventExpiredToken      = "EXPIRED_TOKEN"
	EventRateLimited       = "RATE_LIMITED"
	EventServiceStartup    = "SERVICE_STARTUP"
	EventServiceShutdown   = "SERVICE_SHUTDOWN"
	EventDBConnection      = "DB_CONNECTION"
	EventDBError           = "DB_ERROR"
	EventUpstreamError     = "UPSTREAM_ERROR"
	EventGeneral           = "GENERAL"

	EventReviewCreated    = "REVIEW_CREATED"
	EventReviewEdited     = "REVIEW_EDITED"
	EventReviewLiked      = "REVIEW_LIKED"
	EventReviewDeleted    = "REVIEW_DELETED"
	EventNotificationSent = "NOTIFICATION_SENT"
)

type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     LogLevel               `json:"level"`
	Service   string                 `json:"service"`
	EventType string                 `json:"event_type"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Hmac      string                 `json:"hmac"`
}

type Config struct {
	ServiceName string
	Environment string
	LogFilePath string
	HMACKey     string
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int

	// FileOnly keeps stdout free for interactive programs.
	FileOnly bool
}

const defaultHMACKey = "default-hmac-key-change-in-production"

type Logger struct {
	service string
	out     io.Writer
	signer  signer
	scrub   redactor

	mu sync.Mutex
}

var (
	instance   *Logger
	instanceMu sync.Mutex
)

func Init(cfg Config) {
	setInstance(NewLogger(cfg))
}

// SetOutput replaces the process-wide logger with one writing only to w.
func SetOutput(serviceName string, w io.Writer) {
	setInstance(NewLoggerWithWriter(Config{ServiceName: serviceName, Environment: "test"}, w))
}

func setInstance(l *Logger) {
	instanceMu.Lock()
	instance = l
	instanceMu.Unlock()
}

func GetLogger() *Logger {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance == nil {
		instance = NewLoggerWithWriter(Config{ServiceName: "unknown", Environment: "development"}, os.Stdout)
	}
	return instance
}

// NewLogger writes to stdout (unless FileOnly) and to a rotated file.
func NewLogger(cfg Config) *Logger {
	return NewLoggerWithWriter(cfg, openSink(&cfg))
}

func NewLoggerWithWriter(cfg Config, w io.Writer) *Logger {
	key := cfg.HMACKey
	if key == "" {
		key = defaultHMACKey
	}
	return &Logger{
		service: cfg.ServiceName,
		out:     w,
		signer:  signer(key),
		scrub:   redactor{stripStacks: cfg.Environment == "production"},
	}
}

func (l *Logger) write(level LogLevel, eventType, message string, details map[string]interface{}) {
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Service:   l.service,
		EventType: eventType,
		Message:   l.scrub.text(message),
		Details:   l.scrub.details(details),
	}
	entry.Hmac = l.signer.sign(entry)

	line, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to marshal log entry: %v\n", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Write(append(line, '\n'))
}

func (l *Logger) Info(eventType, message string, details map[string]interface{}) {
	l.write(LevelInfo, eventType, message, details)
}

func (l *Logger) Warn(eventType, message string, details map[string]interface{}) {
	l.write(LevelWarn, eventType, message, details)
}

func (l *Logger) Error(eventType, message string, details map[string]interface{}) {
	l.write(LevelError, eventType, message, details)
}

func (l *Logger) Security(eventType, message string, details map[string]interface{}) {
	l.write(LevelSecurity, eventType, message, details)
}

func (l *Logger) Fatal(eventType, message string, details map[string]interface{}) {
	l.write(LevelError, eventType, message, details)
	os.Exit(1)
}

// Verify reports whether entry carries a valid signature for this logger's key.
func (l *Logger) Verify(entry LogEntry) bool {
	return l.signer.verify(entry)
}

func Info(eventType, message string, details map[string]interface{}) {
	GetLogger().Info(eventType, message, details)
}

func Warn(eventType, message string, details map[string]interface{}) {
	GetLogger().Warn(eventType, message, details)
}

func Error(eventType, message string, details map[string]interface{}) {
	GetLogger().Error(eventType, message, details)
}

func Security(eventType, message string, details map[string]interface{}) {
	GetLogger().Security(eventType, message, details)
}

func Fatal(eventType, message string, details map[string]interface{}) {
	GetLogger().Fatal(eventType, message, details)
}

// Fields builds a details map from alternating keys and values. Pairs with a
// non-string key are skipped.
func Fields(kv ...interface{}) map[string]interface{} {
	details := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			details[key] = kv[i+1]
		}
	}
	return details
}
