package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranscodeError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := &TranscodeError{Input: "a.mp4", Output: "  Invalid data found when processing input\n", Cause: cause}

	assert.True(t, errors.Is(err, ErrTranscode))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrRecognition))
	assert.Equal(t, "FFmpeg error: a.mp4: exit status 1: Invalid data found when processing input", err.Error())

	// 包装后依然可以识别类别
	wrapped := fmt.Errorf("处理失败: %w", err)
	var target *TranscodeError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "a.mp4", target.Input)
	assert.Equal(t, "transcode", Kind(wrapped))
}

func TestRecognitionAndWriteErrors(t *testing.T) {
	cause := errors.New("model not found")
	recErr := &RecognitionError{Model: "large-v3", Cause: cause}
	assert.True(t, errors.Is(recErr, ErrRecognition))
	assert.True(t, errors.Is(recErr, cause))
	assert.Contains(t, recErr.Error(), "large-v3")

	writeErr := &WriteError{Path: "/tmp/a.srt", Cause: errors.New("permission denied")}
	assert.True(t, errors.Is(writeErr, ErrWrite))
	assert.Contains(t, writeErr.Error(), "/tmp/a.srt")
}

func TestKind(t *testing.T) {
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, "usage", Kind(NewUsageError("缺少参数")))
	assert.Equal(t, "config", Kind(fmt.Errorf("%w: bad", ErrConfig)))
	assert.Equal(t, "recognition", Kind(&RecognitionError{Model: "tiny"}))
	assert.Equal(t, "write", Kind(&WriteError{Path: "x"}))
	assert.Equal(t, "unexpected", Kind(errors.New("boom")))
}
