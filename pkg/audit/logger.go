package audit

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType identifies an auditable action
type EventType string

const (
	EventLoginFailed        EventType = "login_failed"
	EventLoginSuccess       EventType = "login_success"
	EventUserRegistered     EventType = "user_registered"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventAccessDenied       EventType = "access_denied"
	EventProfileUpdated     EventType = "profile_updated"
	EventProfilesExported   EventType = "profiles_exported"
	EventUploadRejected     EventType = "upload_rejected"
)

// Event is one audit record. SubjectValue must already be masked when it is PII.
type Event struct {
	Event        EventType
	SubjectType  string // "email", "ip", "user_id"
	SubjectValue string
	IP           string
	UserAgent    string
	RequestID    string
	Fields       []zap.Field
}

// Logger writes audit events as structured JSON through zap.
type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var (
	defaultLogger *Logger
	defaultMu     sync.Mutex
)

// Init builds the process-wide audit logger.
func Init(serviceName, environment string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	zl, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		zl, _ = zap.NewProduction()
	}

	l := New(zl, serviceName, environment)

	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
	return l
}

// New wraps an existing zap logger. Tests pass zap.NewNop() or an observer core.
func New(zl *zap.Logger, serviceName, environment string) *Logger {
	return &Logger{zapLogger: zl, serviceName: serviceName, environment: environment}
}

// Default returns the process-wide logger, falling back to a no-op logger before Init.
func Default() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		return New(zap.NewNop(), "", "")
	}
	return defaultLogger
}

// Log records an audit event. The level is derived from the event type.
func (l *Logger) Log(_ context.Context, e Event) {
	level := zapcore.InfoLevel
	switch e.Event {
	case EventLoginFailed, EventRateLimitTriggered, EventUploadRejected:
		level = zapcore.WarnLevel
	case EventAccessDenied:
		level = zapcore.ErrorLevel
	}

	fields := []zap.Field{
		zap.String("service", l.serviceName),
		zap.String("env", l.environment),
		zap.String("event", string(e.Event)),
		zap.Time("occurred_at", time.Now().UTC()),
	}
	if e.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", e.SubjectType))
	}
	if e.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", e.SubjectValue))
	}
	if e.IP != "" {
		fields = append(fields, zap.String("ip", e.IP))
	}
	if e.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", e.UserAgent))
	}
	if e.RequestID != "" {
		fields = append(fields, zap.String("request_id", e.RequestID))
	}
	fields = append(fields, e.Fields...)

	l.zapLogger.Log(level, string(e.Event), fields...)
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	switch {
	case len(email) < 3:
		return "***"
	case at <= 1:
		return "***" + email[max(at, 1):]
	default:
		return email[:1] + "***" + email[at:]
	}
}
