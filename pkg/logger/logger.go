package logger

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const TraceIDKey ctxKey = "trace_id"

var log = logrus.New()

// Init configures the package logger for the given environment.
func Init(env string) {
	log.SetOutput(os.Stdout)
	if env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
		return
	}
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.DebugLevel)
}

func Debug(msg string, args ...any) { entry(args).Debug(msg) }
func Info(msg string, args ...any)  { entry(args).Info(msg) }
func Warn(msg string, args ...any)  { entry(args).Warn(msg) }
func Error(msg string, args ...any) { entry(args).Error(msg) }
func Fatal(msg string, args ...any) { entry(args).Fatal(msg) }

// WithContext returns an entry tagged with the trace id carried by ctx.
func WithContext(ctx context.Context) *logrus.Entry {
	if id := TraceIDFromContext(ctx); id != "" {
		return log.WithField("trace_id", id)
	}
	return logrus.NewEntry(log)
}

func ContextWithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TraceIDKey, id)
}

func TraceIDFromContext(ctx context.Context) string {
	if v := ctx.Value(TraceIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Fields turns key/value pairs into logrus fields. A bare error is stored
// under "error"; anything else without a key gets a positional name.
func Fields(args []any) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case error:
			fields["error"] = v.Error()
		case string:
			if i+1 < len(args) {
				fields[v] = args[i+1]
				i++
				continue
			}
			fields[fmt.Sprintf("arg%d", i)] = v
		default:
			fields[fmt.Sprintf("arg%d", i)] = v
		}
	}
	return fields
}

func entry(args []any) *logrus.Entry {
	if len(args) == 0 {
		return logrus.NewEntry(log)
	}
	return log.WithFields(Fields(args))
}
