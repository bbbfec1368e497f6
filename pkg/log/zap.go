package log

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ log.Logger = (*ZapLogger)(nil)

// ZapLogger adapts a zap core to the kratos log.Logger interface.
type ZapLogger struct {
	log  *zap.Logger
	Sync func() error
}

// NewZapLogger builds a ZapLogger writing to stdout with the given
// encoder and level.
func NewZapLogger(encoder zapcore.Encoder, level zap.AtomicLevel, opts ...zap.Option) *ZapLogger {
	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
	zl := zap.New(core, opts...)
	return &ZapLogger{log: zl, Sync: zl.Sync}
}

// Log implements log.Logger. Keyvals must come in pairs; an odd list is
// reported instead of panicking.
func (l *ZapLogger) Log(level log.Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 || len(keyvals)%2 != 0 {
		l.log.Warn(fmt.Sprint("keyvals must come in pairs: ", keyvals))
		return nil
	}

	fields := make([]zap.Field, 0, len(keyvals)/2+1)
	fields = append(fields, zap.String("caller", callerOf()))
	for i := 0; i < len(keyvals); i += 2 {
		fields = append(fields, zap.Any(fmt.Sprint(keyvals[i]), fmt.Sprint(keyvals[i+1])))
	}

	switch level {
	case log.LevelDebug:
		l.log.Debug("", fields...)
	case log.LevelInfo:
		l.log.Info("", fields...)
	case log.LevelWarn:
		l.log.Warn("", fields...)
	case log.LevelError:
		l.log.Error("", fields...)
	case log.LevelFatal:
		l.log.Fatal("", fields...)
	}
	return nil
}

// InitDefaultLogger creates a console logger.
func InitDefaultLogger(lvl zapcore.Level) *ZapLogger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "t",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}

	return NewZapLogger(
		zapcore.NewConsoleEncoder(encCfg),
		zap.NewAtomicLevelAt(lvl),
		zap.AddStacktrace(zap.NewAtomicLevelAt(zapcore.ErrorLevel)),
	)
}

// InitJSONLogger creates a JSON logger for production deployments.
func InitJSONLogger(lvl zapcore.Level) *ZapLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeDuration = zapcore.SecondsDurationEncoder
	encCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
	}
	// Caller resolution happens in Log, after the kratos helper frames.
	encCfg.CallerKey = ""

	return NewZapLogger(
		zapcore.NewJSONEncoder(encCfg),
		zap.NewAtomicLevelAt(lvl),
		zap.AddStacktrace(zap.NewAtomicLevelAt(zapcore.ErrorLevel)),
	)
}

// frameworkPaths are stack frames to skip when resolving the call site.
var frameworkPaths = []string{
	"go-kratos/kratos",
	"pkg/log/zap.go",
}

// callerOf walks up the stack past kratos helper frames and returns the
// first application frame as file:line.
func callerOf() string {
	const maxDepth = 15
	for i := 3; i < maxDepth; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if isFrameworkFrame(file) {
			continue
		}
		return shortPath(file, line)
	}
	return "unknown"
}

func isFrameworkFrame(file string) bool {
	for _, p := range frameworkPaths {
		if strings.Contains(file, p) {
			return true
		}
	}
	return false
}

// shortPath trims the module prefix from file, keeping the path from the
// nearest source-tree root.
func shortPath(file string, line int) string {
	for _, root := range []string{"/internal/", "/pkg/", "/cmd/", "/test/"} {
		if idx := strings.LastIndex(file, root); idx != -1 {
			return fmt.Sprintf("%s:%d", file[idx+1:], line)
		}
	}
	parts := strings.Split(file, "/")
	if len(parts) >= 2 {
		return fmt.Sprintf("%s/%s:%d", parts[len(parts)-2], parts[len(parts)-1], line)
	}
	return fmt.Sprintf("%s:%d", file, line)
}
