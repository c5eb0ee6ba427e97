package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	logMu  sync.Mutex
)

// Logger returns the process logger, building a production logger on first use.
func Logger() *zap.Logger {
	logMu.Lock()
	defer logMu.Unlock()
	if logger == nil {
		logger = newLogger(os.Stdout)
	}
	return logger
}

func newLogger(w io.Writer) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if os.Getenv("GIN_MODE") == "debug" {
		level.SetLevel(zapcore.DebugLevel)
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

// SetupGinLog routes gin's access and error logs, and the process logger,
// to stdout and, when --log-dir is set, to a dated file.
func SetupGinLog() {
	var w io.Writer = os.Stdout
	if *LogDir != "" {
		if err := os.MkdirAll(*LogDir, 0o755); err != nil {
			FatalLog("create log dir: ", err)
		}
		name := filepath.Join(*LogDir, fmt.Sprintf("mealprep-%s.log", time.Now().Format("20060102")))
		f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			FatalLog("open log file: ", err)
		}
		w = io.MultiWriter(os.Stdout, f)
	}
	gin.DefaultWriter = w
	gin.DefaultErrorWriter = w

	logMu.Lock()
	logger = newLogger(w)
	logMu.Unlock()
}

func SysLog(s string, fields ...zap.Field) {
	Logger().Info(s, fields...)
}

func SysError(s string, fields ...zap.Field) {
	Logger().Error(s, fields...)
}

func SysDebug(s string, fields ...zap.Field) {
	Logger().Debug(s, fields...)
}

func FatalLog(v ...any) {
	Logger().Fatal(fmt.Sprint(v...))
}
