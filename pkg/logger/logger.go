package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global *zap.Logger

// New construye un logger JSON de producción. Un nivel desconocido cae a info.
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	return zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Encoding:         "json",
		EncoderConfig:    enc,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		Sampling:         &zap.SamplingConfig{Initial: 100, Thereafter: 100},
	}.Build()
}

// Init fija el logger global; si zap no puede abrir la salida, no hay nada que hacer.
func Init(level string) {
	l, err := New(level)
	if err != nil {
		panic(err)
	}
	global = l
}

// Sugar retorna la variante printf del logger global.
func Sugar() *zap.SugaredLogger {
	return Logger().Sugar()
}

// Logger retorna el logger global. Si Init no se llamó, devuelve un logger mudo.
func Logger() *zap.Logger {
	if global == nil {
		return zap.NewNop()
	}
	return global
}
