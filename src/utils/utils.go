package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"liftsync/src/types"
)

// InitLogger sets up the default slog logger with compact time and file:line source.
// If logPath is set, output is written to both stdout and the file. The returned func closes the file.
func InitLogger(level slog.Level, logPath string) (func(), error) {
	var out io.Writer = os.Stdout
	closeFn := func() {}
	if logPath != "" {
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return closeFn, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, logFile)
		closeFn = func() { logFile.Close() }
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format("15:04:05"))
				}
			}
			if a.Key == slog.SourceKey {
				if source, ok := a.Value.Any().(*slog.Source); ok {
					file := source.File
					if lastSlash := strings.LastIndexByte(file, '/'); lastSlash >= 0 {
						file = file[lastSlash+1:]
					}
					a.Value = slog.StringValue(fmt.Sprintf("%s:%d", file, source.Line))
				}
			}
			return a
		},
	})

	slog.SetDefault(slog.New(handler))
	return closeFn, nil
}

func Direction(from, to int) types.MotorDirection {
	if from < to {
		return types.MD_Up
	}
	if from > to {
		return types.MD_Down
	}
	return types.MD_Stop
}

func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
