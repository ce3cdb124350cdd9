// 指示: miu200521358
// Package logging はログ出力の共通契約と既定ロガーを提供する。
package logging

import (
	"fmt"
	"sync"
)

// LogLevel はログレベルを表す。
type LogLevel int

const (
	LOG_LEVEL_DEBUG LogLevel = iota
	LOG_LEVEL_INFO
	LOG_LEVEL_WARN
	LOG_LEVEL_ERROR
)

// String はログレベル名を返す。
func (l LogLevel) String() string {
	switch l {
	case LOG_LEVEL_DEBUG:
		return "DEBUG"
	case LOG_LEVEL_INFO:
		return "INFO"
	case LOG_LEVEL_WARN:
		return "WARN"
	case LOG_LEVEL_ERROR:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLogLevel は文字列からログレベルを解決する。
func ParseLogLevel(value string) (LogLevel, error) {
	switch value {
	case "debug", "DEBUG":
		return LOG_LEVEL_DEBUG, nil
	case "", "info", "INFO":
		return LOG_LEVEL_INFO, nil
	case "warn", "WARN", "warning":
		return LOG_LEVEL_WARN, nil
	case "error", "ERROR":
		return LOG_LEVEL_ERROR, nil
	default:
		return LOG_LEVEL_INFO, fmt.Errorf("ログレベルが不正です: %s", value)
	}
}

// ILogger はログ出力の契約を表す。
type ILogger interface {
	Debug(format string, params ...any)
	Info(format string, params ...any)
	Warn(format string, params ...any)
	Error(format string, params ...any)
	SetLevel(level LogLevel)
	Level() LogLevel
	MessageBuffer() *MessageBuffer
}

// DefaultMessageBufferLimit はMessageBufferが保持する既定の最大行数。
const DefaultMessageBufferLimit = 1000

// MessageBuffer は出力済みログ行を直近 limit 行まで保持する。
type MessageBuffer struct {
	mu    sync.Mutex
	limit int
	lines []string
}

// NewMessageBuffer は既定の最大行数でMessageBufferを生成する。
func NewMessageBuffer() *MessageBuffer {
	return NewMessageBufferWithLimit(DefaultMessageBufferLimit)
}

// NewMessageBufferWithLimit は最大行数を指定してMessageBufferを生成する。limit が0以下なら既定値を使う。
func NewMessageBufferWithLimit(limit int) *MessageBuffer {
	if limit <= 0 {
		limit = DefaultMessageBufferLimit
	}
	return &MessageBuffer{limit: limit}
}

// Append はログ行を追加する。最大行数を超えた分は古い行から破棄する。
func (b *MessageBuffer) Append(line string) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.limit <= 0 {
		b.limit = DefaultMessageBufferLimit
	}
	if len(b.lines) >= b.limit {
		dropped := len(b.lines) - b.limit + 1
		b.lines = append(b.lines[:0], b.lines[dropped:]...)
	}
	b.lines = append(b.lines, line)
}

// Lines は保持しているログ行の複製を返す。
func (b *MessageBuffer) Lines() []string {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// Clear は保持しているログ行を破棄する。
func (b *MessageBuffer) Clear() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}

var (
	defaultMu     sync.RWMutex
	defaultLogger ILogger = &discardLogger{buffer: NewMessageBuffer()}
)

// DefaultLogger は既定ロガーを返す。
func DefaultLogger() ILogger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger は既定ロガーを差し替える。
func SetDefaultLogger(logger ILogger) {
	if logger == nil {
		return
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// discardLogger は初期化前に使う出力なしロガーを表す。
type discardLogger struct {
	level  LogLevel
	buffer *MessageBuffer
}

func (l *discardLogger) Debug(string, ...any)          {}
func (l *discardLogger) Info(string, ...any)           {}
func (l *discardLogger) Warn(string, ...any)           {}
func (l *discardLogger) Error(string, ...any)          {}
func (l *discardLogger) SetLevel(level LogLevel)       { l.level = level }
func (l *discardLogger) Level() LogLevel               { return l.level }
func (l *discardLogger) MessageBuffer() *MessageBuffer { return l.buffer }
