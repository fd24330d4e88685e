// Package logging builds the zap logger used for diagnostics. Logs always go
// to stderr; stdout carries only the JSON report.
package logging

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the encoding and level of a logger.
type Options struct {
	Format string // "console" or "json"
	Debug  bool
}

// New returns a logger writing to w, or to stderr when w is nil.
func New(w io.Writer, opts Options) (*zap.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	var enc zapcore.Encoder
	switch opts.Format {
	case "", "console":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		enc = zapcore.NewConsoleEncoder(cfg)
	case "json":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, errors.Newf("unknown log format %q", opts.Format)
	}

	level := zap.InfoLevel
	if opts.Debug {
		level = zap.DebugLevel
	}
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core, zap.ErrorOutput(zapcore.Lock(zapcore.AddSync(w)))), nil
}
