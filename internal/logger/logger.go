package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options control the encoder, the level and where entries are written.
type Options struct {
	JSON  bool
	Debug bool
	// App is attached to every entry when set.
	App string
	// Outputs defaults to stdout. Interactive commands use stderr so logs do
	// not interleave with prompts.
	Outputs []string
}

func New(opts Options) (*zap.Logger, error) {
	encoding := "console"
	if opts.JSON {
		encoding = "json"
	}

	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	outputs := opts.Outputs
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	cfg := zap.Config{
		Encoding:          encoding,
		Level:             zap.NewAtomicLevelAt(level),
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !opts.Debug,
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "step",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}
	if opts.App != "" {
		cfg.InitialFields = map[string]interface{}{FieldApp: opts.App}
	}

	return cfg.Build()
}
