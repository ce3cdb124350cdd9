// 指示: miu200521358
package mlogging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/miu200521358/mu_retarget/pkg/shared/base/logging"
)

func TestLoggerFiltersByLevel(t *testing.T) {
	out := bytes.NewBuffer(nil)
	logger := NewLogger(out)
	logger.SetLevel(logging.LOG_LEVEL_INFO)

	logger.Debug("詳細: %d", 1)
	logger.Info("開始: %s", "run")
	logger.Warn("警告")

	lines := logger.MessageBuffer().Lines()
	if len(lines) != 2 {
		t.Fatalf("line count mismatch: got=%d lines=%v", len(lines), lines)
	}
	if lines[0] != "[INFO] 開始: run" {
		t.Fatalf("info line mismatch: %s", lines[0])
	}
	if lines[1] != "[WARN] 警告" {
		t.Fatalf("warn line mismatch: %s", lines[1])
	}
	if !strings.Contains(out.String(), "開始: run") {
		t.Fatalf("slog output missing message: %s", out.String())
	}
	if strings.Contains(out.String(), "詳細") {
		t.Fatalf("debug message should be filtered: %s", out.String())
	}
}

func TestLoggerDebugLevelOutputsDebug(t *testing.T) {
	logger := NewLogger(bytes.NewBuffer(nil))
	logger.SetLevel(logging.LOG_LEVEL_DEBUG)

	logger.Debug("詳細: %d", 1)

	lines := logger.MessageBuffer().Lines()
	if len(lines) != 1 || lines[0] != "[DEBUG] 詳細: 1" {
		t.Fatalf("debug line mismatch: %v", lines)
	}
	if logger.Level() != logging.LOG_LEVEL_DEBUG {
		t.Fatalf("level mismatch: %s", logger.Level())
	}
}

func TestSetDefaultLoggerSwapsLogger(t *testing.T) {
	logger := NewLogger(bytes.NewBuffer(nil))
	prevLogger := logging.DefaultLogger()
	logging.SetDefaultLogger(logger)
	t.Cleanup(func() {
		logging.SetDefaultLogger(prevLogger)
	})

	logging.DefaultLogger().Info("既定ロガー")
	if lines := logger.MessageBuffer().Lines(); len(lines) != 1 {
		t.Fatalf("default logger should be swapped: %v", lines)
	}
}

func TestLoggerBufferKeepsRecentLines(t *testing.T) {
	logger := NewLogger(bytes.NewBuffer(nil))
	for i := 0; i < logging.DefaultMessageBufferLimit+5; i++ {
		logger.Info("行: %d", i)
	}

	lines := logger.MessageBuffer().Lines()
	if len(lines) != logging.DefaultMessageBufferLimit {
		t.Fatalf("buffer should be capped: %d", len(lines))
	}
	if lines[0] != "[INFO] 行: 5" {
		t.Fatalf("oldest lines should be dropped: %s", lines[0])
	}
}
