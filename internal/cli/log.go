package cli

import (
	"fmt"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// RegisterLoggingFlags adds --loglevel and --logformat to cmd and its children.
func RegisterLoggingFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("loglevel", "warn", "set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("logformat", "text", "set the log format (text, json)")
}

// GetBaseLogger builds the logger selected by the logging flags.
// Logs are written to the command's error stream.
func GetBaseLogger(cmd *cobra.Command) (*slog.Logger, error) {
	level, err := GetLoggerLevel(cmd)
	if err != nil {
		return nil, err
	}

	format := cmd.Flag("logformat").Value.String()
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level: level,
		})
	case "text":
		handler = charmlog.NewWithOptions(cmd.ErrOrStderr(), charmlog.Options{
			Level:  charmLevel(level),
			Prefix: "modclash",
		})
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	return slog.New(handler), nil
}

// GetLoggerLevel parses the --loglevel flag.
func GetLoggerLevel(cmd *cobra.Command) (slog.Level, error) {
	logLevel := cmd.Flag("loglevel").Value.String()
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log level: %s", logLevel)
	}
	return level, nil
}

func charmLevel(level slog.Level) charmlog.Level {
	switch level {
	case slog.LevelDebug:
		return charmlog.DebugLevel
	case slog.LevelInfo:
		return charmlog.InfoLevel
	case slog.LevelError:
		return charmlog.ErrorLevel
	default:
		return charmlog.WarnLevel
	}
}
