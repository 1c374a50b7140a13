package utils

import (
	"errors"
	"fmt"
	"strings"
)

// 错误类别标记，配合 errors.Is 使用
var (
	ErrUsage       = errors.New("usage error")
	ErrConfig      = errors.New("configuration error")
	ErrTranscode   = errors.New("transcode error")
	ErrRecognition = errors.New("recognition error")
	ErrWrite       = errors.New("write error")
)

// UsageError 命令行参数不合法，属于致命错误，在处理任何文件之前报告
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}

// NewUsageError 创建一个新的 UsageError
func NewUsageError(format string, args ...interface{}) error {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// TranscodeError 音频标准化失败，Output 保存转码工具的诊断输出
type TranscodeError struct {
	Input  string
	Output string
	Cause  error
}

// Error 实现error接口
func (e *TranscodeError) Error() string {
	msg := fmt.Sprintf("FFmpeg error: %s", e.Input)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

// Unwrap 支持error chain
func (e *TranscodeError) Unwrap() error {
	return e.Cause
}

func (e *TranscodeError) Is(target error) bool {
	return target == ErrTranscode
}

// RecognitionError 语音识别失败（模型加载、识别过程或识别进程异常退出）
type RecognitionError struct {
	Model string
	Cause error
}

func (e *RecognitionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("识别失败 (model=%s): %s", e.Model, e.Cause.Error())
	}
	return fmt.Sprintf("识别失败 (model=%s)", e.Model)
}

func (e *RecognitionError) Unwrap() error {
	return e.Cause
}

func (e *RecognitionError) Is(target error) bool {
	return target == ErrRecognition
}

// WriteError 写入字幕文件失败
type WriteError struct {
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("写入SRT文件失败 %s: %v", e.Path, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

func (e *WriteError) Is(target error) bool {
	return target == ErrWrite
}

// Kind 返回错误类别的简短名称，用于日志字段
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUsage):
		return "usage"
	case errors.Is(err, ErrConfig):
		return "config"
	case errors.Is(err, ErrTranscode):
		return "transcode"
	case errors.Is(err, ErrRecognition):
		return "recognition"
	case errors.Is(err, ErrWrite):
		return "write"
	default:
		return "unexpected"
	}
}
