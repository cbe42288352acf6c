package log

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// InitLogger builds the process logger once. Logs always go to a rotated file;
// development builds mirror them to stderr so stdout stays clean for command output.
func InitLogger(path string, env string) zerolog.Logger {
	once.Do(func() {
		zerolog.DurationFieldUnit = time.Millisecond
		zerolog.ErrorFieldName = "error"
		zerolog.ErrorStackFieldName = "stack-trace"
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.LevelFieldName = "level"
		zerolog.MessageFieldName = "message"
		zerolog.TimestampFieldName = "timestamp"

		logLevel := zerolog.InfoLevel
		writers := []io.Writer{}
		if env == "development" {
			logLevel = zerolog.TraceLevel
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
		}

		if path != "" {
			_ = os.MkdirAll(filepath.Dir(path), 0o755)
			writers = append(writers, &lumberjack.Logger{
				Filename:   path,
				MaxSize:    10,
				MaxBackups: 3,
				Compress:   true,
			})
		}
		if len(writers) == 0 {
			writers = append(writers, io.Discard)
		}

		logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
			Level(logLevel).
			Hook(AttachTraceIdFromContext()).
			With().
			Timestamp().
			Caller().
			Stack().
			Int("pid", os.Getpid()).
			Logger()

		logger.Info().
			Str(KeyTag, "InitLogger").
			Str(KeyProcess, "InitLogger").
			Msg("finish initiating logging")
	})
	return logger
}
