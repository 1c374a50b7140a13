package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/asr"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/audio"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/models"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

// recordingHandler 记录调用顺序，文件名包含 "bad" 时返回失败
type recordingHandler struct {
	mu     sync.Mutex
	calls  []models.ProcessingRequest
	delay  time.Duration
	onCall func(req models.ProcessingRequest)
}

func (h *recordingHandler) Process(ctx context.Context, req models.ProcessingRequest) *models.FileResult {
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	h.mu.Lock()
	h.calls = append(h.calls, req)
	h.mu.Unlock()
	if h.onCall != nil {
		h.onCall(req)
	}

	if strings.Contains(req.InputPath, "bad") {
		return &models.FileResult{InputPath: req.InputPath, Status: models.StatusFailed, Err: errors.New("failed")}
	}
	if strings.Contains(req.InputPath, "quiet") {
		return &models.FileResult{InputPath: req.InputPath, Status: models.StatusEmpty}
	}
	return &models.FileResult{InputPath: req.InputPath, Status: models.StatusSucceeded}
}

func inputPaths(results []*models.FileResult) []string {
	paths := make([]string, 0, len(results))
	for _, r := range results {
		paths = append(paths, r.InputPath)
	}
	return paths
}

func TestBatchSequentialContinuesAfterFailure(t *testing.T) {
	handler := &recordingHandler{}
	batch := NewBatchProcessor(handler, 1, utils.DiscardLogger())

	files := []string{"a.mp3", "bad.mp3", "c.mp4", "quiet.wav"}
	summary := batch.Run(context.Background(), "large-v3", "zh", files)

	require.Len(t, handler.calls, 4)
	for i, call := range handler.calls {
		assert.Equal(t, files[i], call.InputPath)
		assert.Equal(t, "large-v3", call.Model)
		assert.Equal(t, "zh", call.Language)
	}

	assert.Equal(t, files, inputPaths(summary.Results))
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Empty)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Skipped)
}

func TestBatchWithFileProcessorIsolatesFailures(t *testing.T) {
	env := newTestEnv(t, []models.Segment{{Start: 0, End: 1, Text: "hello"}}, 1)
	env.normalizer.failFor["b.mp3"] = &utils.TranscodeError{Input: "b.mp3", Output: "moov atom not found"}

	batch := NewBatchProcessor(env.processor, 1, env.logger)
	summary := batch.Run(context.Background(), "large-v3", "en",
		[]string{env.input("a.mp3"), env.input("b.mp3"), env.input("c.mp3")})

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, utils.CheckFileExists(env.input("a.srt")))
	assert.False(t, utils.CheckFileExists(env.input("b.srt")))
	assert.True(t, utils.CheckFileExists(env.input("c.srt")))
	env.assertNoTempFiles(t)
}

func TestBatchStopsStartingFilesAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := &recordingHandler{}
	handler.onCall = func(req models.ProcessingRequest) {
		// 第一个文件处理过程中收到中断
		cancel()
	}

	summary := NewBatchProcessor(handler, 1, utils.DiscardLogger()).
		Run(ctx, "tiny", "auto", []string{"a.mp3", "b.mp3", "c.mp3"})

	assert.Len(t, handler.calls, 1)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, []string{"a.mp3"}, inputPaths(summary.Results))
}

func TestBatchConcurrentKeepsInputOrder(t *testing.T) {
	handler := &recordingHandler{delay: 10 * time.Millisecond}
	batch := NewBatchProcessor(handler, 3, utils.DiscardLogger())

	files := []string{"1.mp3", "bad-2.mp3", "3.mp3", "4.mp3", "5.mp3", "quiet-6.mp3"}
	summary := batch.Run(context.Background(), "tiny", "en", files)

	assert.Len(t, handler.calls, len(files))
	assert.Equal(t, files, inputPaths(summary.Results))
	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Empty)
}

func TestBatchEmptyInput(t *testing.T) {
	summary := NewBatchProcessor(&recordingHandler{}, 0, nil).Run(context.Background(), "tiny", "en", nil)
	assert.Empty(t, summary.Results)
	assert.Equal(t, 0, summary.Skipped)
}

func TestBatchConcurrentWithFileProcessor(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	var mu sync.Mutex
	handles := map[asr.Recognizer]bool{}
	factory := func(model asr.ModelSource, engine asr.EngineConfig) (asr.Recognizer, error) {
		rec, err := asr.NewStubRecognizer(model, engine)
		mu.Lock()
		handles[rec] = true
		mu.Unlock()
		return rec, err
	}
	proc := NewFileProcessor(
		env.normalizer,
		asr.NewAdapter(models.NewDefaultConfig(), factory, env.logger),
		audio.NewTempFileManager(env.tempDir, env.logger),
		nil,
		env.logger,
	)

	var files []string
	for i := 0; i < 8; i++ {
		files = append(files, env.input(fmt.Sprintf("clip%d.mp3", i)))
	}
	summary := NewBatchProcessor(proc, 4, env.logger).Run(context.Background(), "tiny", "en", files)

	assert.Equal(t, 8, summary.Succeeded)
	assert.Equal(t, files, inputPaths(summary.Results))
	assert.Len(t, handles, 8, "每个文件应使用独立的识别引擎")

	env.normalizer.mu.Lock()
	outputs := map[string]bool{}
	for _, out := range env.normalizer.outputs {
		outputs[out] = true
	}
	env.normalizer.mu.Unlock()
	assert.Len(t, outputs, 8, "每个文件应使用独立的临时文件")

	for _, file := range files {
		data, err := os.ReadFile(utils.SubtitlePath(file))
		require.NoError(t, err)
		assert.Equal(t, "1\n00:00:00,000 --> 00:00:01,000\n[stub] tiny\n", string(data))
	}
	env.assertNoTempFiles(t)
}
