// Package logger envuelve zerolog para inyectar el logger por constructor en
// vez de depender del global.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones del logger raíz.
type Config struct {
	Env   string // development -> consola legible; cualquier otro -> JSON por línea
	Level string // trace, debug, info, warn, error
}

// Logger es el logger estructurado del proceso.
type Logger struct {
	zl zerolog.Logger
}

// New crea el logger raíz según el entorno.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()

	// Librerías que escriben por el global de zerolog comparten la salida.
	log.Logger = zl

	return &Logger{zl: zl}
}

// Component deriva un sublogger etiquetado con el subsistema que lo emite
// (mh, notify, billing, ...).
func (l *Logger) Component(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With crea un sublogger con campos fijos arbitrarios.
func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}
