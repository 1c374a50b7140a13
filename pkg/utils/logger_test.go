package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	// 测试控制台日志
	logger, closer, err := NewLogger(LogLevelNormal, "")
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.NoError(t, closer.Close())

	// 测试文件日志
	logFile := filepath.Join(t.TempDir(), "logs", "subgen.log")
	logger, closer, err = NewLogger(LogLevelVerbose, logFile)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.Info("写入测试日志")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), "写入测试日志"))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"VERBOSE": logrus.DebugLevel,
		"INFO":    logrus.InfoLevel,
		"WARN":    logrus.WarnLevel,
		"debug":   logrus.DebugLevel,
		"error":   logrus.ErrorLevel,
		"bogus":   logrus.InfoLevel,
		"":        logrus.InfoLevel,
	}
	for input, want := range cases {
		assert.Equal(t, want, ParseLevel(input), "level %q", input)
	}
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, logrus.StandardLogger(), OrDefault(nil))

	logger := DiscardLogger()
	assert.Equal(t, logger, OrDefault(logger))
}

func TestNewLoggerWithOutput(t *testing.T) {
	var buf strings.Builder
	logger, closer, err := NewLoggerWithOutput(&buf, "warn", "")
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("不应出现")
	logger.WithField("file", "a.mp3").Warn("没有有效片段")

	out := buf.String()
	assert.NotContains(t, out, "不应出现")
	assert.Contains(t, out, "没有有效片段")
	assert.Contains(t, out, "file=a.mp3")
}
