package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
)

var defaultLogger = New(os.Stdout, os.Getenv("LOG_LEVEL"))

// New builds a JSON logger writing to w. Unknown levels fall back to info.
func New(w io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{})
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

func Default() *logrus.Logger {
	return defaultLogger
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// WithRequestID stores the request id on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// WithUserID stores the authenticated user id on ctx.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}

// FromContext decorates base with the request scoped fields found on ctx.
func FromContext(ctx context.Context, base logrus.FieldLogger) logrus.FieldLogger {
	if base == nil {
		base = defaultLogger
	}
	if ctx == nil {
		return base
	}
	fields := logrus.Fields{}
	if v := ctx.Value(RequestIDKey); v != nil {
		fields["request_id"] = v
	}
	if v := ctx.Value(UserIDKey); v != nil {
		fields["user_id"] = v
	}
	if len(fields) == 0 {
		return base
	}
	return base.WithFields(fields)
}
