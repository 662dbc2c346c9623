package tld

import (
	"io"
	"log"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// ConfigLogger builds the zap logger from the viper "logger" key. When a
// rotation filename is configured the lumberjack writer takes over from
// stderr; ":stdout:" is a passthrough to os.Stdout.
func ConfigLogger() *zap.Logger {
	jack := &lumberjack.Logger{}
	err := viper.UnmarshalKey("logger", jack)
	if err != nil {
		log.Fatal(err)
	}

	var w io.Writer = os.Stderr
	if len(jack.Filename) > 0 {
		if jack.Filename == ":stdout:" {
			w = os.Stdout
		} else {
			w = jack
		}
	}

	level := zapcore.ErrorLevel
	if viper.IsSet("logger.level") {
		l, err := zap.ParseAtomicLevel(viper.GetString("logger.level"))
		if err != nil {
			log.Fatal(err)
		}
		level = l.Level()
	}

	ec := zap.NewProductionEncoderConfig()
	if viper.GetBool("logger.dev") {
		level = zapcore.DebugLevel
		ec = zap.NewDevelopmentEncoderConfig()
	}

	enc := zapcore.NewJSONEncoder(ec)
	if viper.GetString("logger.format") == "console" {
		enc = zapcore.NewConsoleEncoder(ec)
	}

	core := zapcore.NewCore(
		enc,
		zapcore.AddSync(w),
		level,
	)

	return zap.New(core, zap.WithCaller(
		viper.GetBool("verbose"),
	))
}

// Logger is the sugared logging surface the library components accept.
// zap.SugaredLogger satisfies it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})

	Infof(format string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})

	Warnf(format string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})

	Errorf(format string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

type NOOPLogger struct{}

var _ Logger = (*NOOPLogger)(nil)

func (n *NOOPLogger) Debugf(_ string, _ ...interface{}) {}
func (n *NOOPLogger) Debugw(_ string, _ ...interface{}) {
}

func (n *NOOPLogger) Infof(_ string, _ ...interface{}) {}
func (n *NOOPLogger) Infow(_ string, _ ...interface{}) {
}

func (n *NOOPLogger) Warnf(_ string, _ ...interface{}) {}
func (n *NOOPLogger) Warnw(_ string, _ ...interface{}) {
}

func (n *NOOPLogger) Errorf(_ string, _ ...interface{}) {}
func (n *NOOPLogger) Errorw(_ string, _ ...interface{}) {
}
