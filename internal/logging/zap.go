// Package logging builds the zap logger shared by the CLI and the server.
package logging

import (
	"os"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Verbose bool
	JSON    bool
	// Service is attached to every entry when set; the HTTP server uses it
	// so shipped logs can be told apart from CLI runs.
	Service string
}

// New sends error entries to stderr and everything else to stdout.
func New(opts Options) *zap.Logger {
	return newLogger(opts, zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr))
}

func newLogger(opts Options, out, errOut zapcore.WriteSyncer) *zap.Logger {
	cfg := config(opts)

	var enc zapcore.Encoder
	if cfg.Encoding == "json" {
		enc = zapcore.NewJSONEncoder(cfg.EncoderConfig)
	} else {
		enc = zapcore.NewConsoleEncoder(cfg.EncoderConfig)
	}

	errorsOnly := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.ErrorLevel
	})
	belowErrors := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l < zapcore.ErrorLevel && cfg.Level.Enabled(l)
	})

	core := zapcore.NewTee(
		zapcore.NewCore(enc, out, belowErrors),
		zapcore.NewCore(enc.Clone(), errOut, errorsOnly),
	)

	zapOpts := []zap.Option{zap.ErrorOutput(errOut)}
	if cfg.Development {
		zapOpts = append(zapOpts, zap.Development())
	}
	if !cfg.DisableStacktrace {
		zapOpts = append(zapOpts, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	if len(cfg.InitialFields) > 0 {
		keys := make([]string, 0, len(cfg.InitialFields))
		for k := range cfg.InitialFields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]zap.Field, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, zap.Any(k, cfg.InitialFields[k]))
		}
		zapOpts = append(zapOpts, zap.Fields(fields...))
	}

	return zap.New(core, zapOpts...)
}

func config(opts Options) zap.Config {
	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	if opts.JSON {
		cfg.Encoding = "json"
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.TimeKey = ""
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.EncodeCaller = nil
	}

	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = !opts.Verbose
	if opts.Service != "" {
		cfg.InitialFields = map[string]any{"service": opts.Service}
	}

	return cfg
}
