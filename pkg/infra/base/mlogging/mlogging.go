// 指示: miu200521358
// Package mlogging は log/slog を使ったロガー実装を提供する。
package mlogging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/miu200521358/mu_retarget/pkg/shared/base/logging"
)

// LogFormatEnvKey はログ出力形式を切り替える環境変数名。
const LogFormatEnvKey = "MU_LOG_FORMAT"

// Logger は slog へ委譲しつつ出力行をバッファへ残すロガーを表す。
type Logger struct {
	mu      sync.RWMutex
	level   logging.LogLevel
	slogger *slog.Logger
	leveler *slog.LevelVar
	buffer  *logging.MessageBuffer
}

// NewLogger はLoggerを生成する。writer が nil の場合は標準エラー出力へ書き込む。
func NewLogger(writer io.Writer) *Logger {
	if writer == nil {
		writer = os.Stderr
	}
	leveler := &slog.LevelVar{}
	leveler.Set(slog.LevelInfo)
	opts := &slog.HandlerOptions{Level: leveler}

	var handler slog.Handler
	if strings.EqualFold(os.Getenv(LogFormatEnvKey), "json") {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	return &Logger{
		level:   logging.LOG_LEVEL_INFO,
		slogger: slog.New(handler),
		leveler: leveler,
		buffer:  logging.NewMessageBuffer(),
	}
}

// SetLevel はログレベルを設定する。
func (l *Logger) SetLevel(level logging.LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.leveler.Set(toSlogLevel(level))
}

// Level は現在のログレベルを返す。
func (l *Logger) Level() logging.LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// MessageBuffer は出力済みログ行のバッファを返す。
func (l *Logger) MessageBuffer() *logging.MessageBuffer {
	return l.buffer
}

// Debug はDEBUGログを出力する。
func (l *Logger) Debug(format string, params ...any) {
	l.log(logging.LOG_LEVEL_DEBUG, format, params...)
}

// Info はINFOログを出力する。
func (l *Logger) Info(format string, params ...any) {
	l.log(logging.LOG_LEVEL_INFO, format, params...)
}

// Warn はWARNログを出力する。
func (l *Logger) Warn(format string, params ...any) {
	l.log(logging.LOG_LEVEL_WARN, format, params...)
}

// Error はERRORログを出力する。
func (l *Logger) Error(format string, params ...any) {
	l.log(logging.LOG_LEVEL_ERROR, format, params...)
}

// log はレベル判定後にメッセージを整形して出力する。
func (l *Logger) log(level logging.LogLevel, format string, params ...any) {
	if level < l.Level() {
		return
	}
	message := format
	if len(params) > 0 {
		message = fmt.Sprintf(format, params...)
	}
	l.buffer.Append(fmt.Sprintf("[%s] %s", level.String(), message))
	l.slogger.Log(context.Background(), toSlogLevel(level), message)
}

// toSlogLevel はログレベルを slog のレベルへ変換する。
func toSlogLevel(level logging.LogLevel) slog.Level {
	switch level {
	case logging.LOG_LEVEL_DEBUG:
		return slog.LevelDebug
	case logging.LOG_LEVEL_WARN:
		return slog.LevelWarn
	case logging.LOG_LEVEL_ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
