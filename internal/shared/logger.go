package shared

import (
	"fmt"

	"go.temporal.io/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapAdapter adapts zap logger to Temporal's logger interface
type ZapAdapter struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	// skip the adapter frame so callers show up in the log
	logger = logger.WithOptions(zap.AddCallerSkip(1))
	return &ZapAdapter{logger: logger, sugar: logger.Sugar()}
}

func (z *ZapAdapter) Debug(msg string, keyvals ...interface{}) {
	z.sugar.Debugw(msg, keyvals...)
}

func (z *ZapAdapter) Info(msg string, keyvals ...interface{}) {
	z.sugar.Infow(msg, keyvals...)
}

func (z *ZapAdapter) Warn(msg string, keyvals ...interface{}) {
	z.sugar.Warnw(msg, keyvals...)
}

func (z *ZapAdapter) Error(msg string, keyvals ...interface{}) {
	z.sugar.Errorw(msg, keyvals...)
}

func (z *ZapAdapter) With(keyvals ...interface{}) log.Logger {
	logger := z.logger.With(convertToZapFields(keyvals)...)
	return &ZapAdapter{logger: logger, sugar: logger.Sugar()}
}

func convertToZapFields(keyvals []interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}
	return fields
}

// NewLogger builds the process logger. Development mode writes a console
// format for people running the CLI by hand.
func NewLogger(level zap.AtomicLevel, development bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = level
	return cfg.Build()
}
