package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// 日志级别常量，兼容旧版配置中的写法
const (
	LogLevelVerbose = "VERBOSE"
	LogLevelNormal  = "INFO"
	LogLevelQuiet   = "WARN"
)

// NewLogger 创建进程级日志实例
// level: 日志级别 (debug/info/warn/error 或 VERBOSE/INFO/WARN)
// logFile: 日志文件路径，空字符串表示仅输出到控制台
//
// 返回的 logger 只在程序入口创建一次，再以 logrus.FieldLogger 的形式传给各组件。
func NewLogger(level string, logFile string) (*logrus.Logger, io.Closer, error) {
	return NewLoggerWithOutput(os.Stdout, level, logFile)
}

// NewLoggerWithOutput 与 NewLogger 相同，但控制台输出写入 console
func NewLoggerWithOutput(console io.Writer, level string, logFile string) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(ParseLevel(level))

	if logFile == "" {
		logger.SetOutput(console)
		return logger, nopCloser{}, nil
	}

	// 确保日志目录存在
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return nil, nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("打开日志文件失败: %w", err)
	}

	// 同时输出到文件和控制台
	logger.SetOutput(io.MultiWriter(console, file))
	return logger, file, nil
}

// ParseLevel 解析日志级别，无法识别时回退到 info
func ParseLevel(level string) logrus.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case LogLevelVerbose:
		return logrus.DebugLevel
	case LogLevelNormal:
		return logrus.InfoLevel
	case LogLevelQuiet:
		return logrus.WarnLevel
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// OrDefault 组件未注入 logger 时使用 logrus 的标准实例
func OrDefault(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger == nil {
		return logrus.StandardLogger()
	}
	return logger
}

// DiscardLogger 返回一个丢弃所有输出的 logger，主要给测试使用
func DiscardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
