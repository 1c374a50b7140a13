package asr

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/models"
)

//go:embed assets/faster_whisper_stream.py
var helperScript []byte

// 单行 JSON 的最大长度
const maxLineSize = 1 << 20

// FasterWhisper 通过 python 辅助进程调用 faster-whisper。
// 辅助进程逐行输出 JSON：第一行为 {"duration","language"}，之后每行一个片段。
type FasterWhisper struct {
	model  ModelSource
	engine EngineConfig
}

// NewFasterWhisper 创建 faster-whisper 识别引擎，实现 Factory
func NewFasterWhisper(model ModelSource, engine EngineConfig) (Recognizer, error) {
	if strings.TrimSpace(engine.PythonPath) == "" {
		return nil, errors.New("未配置 python 解释器")
	}
	if model.Name == "" {
		return nil, errors.New("模型名称不能为空")
	}
	return &FasterWhisper{model: model, engine: engine}, nil
}

// Args 构造辅助进程的命令行参数（不含解释器本身）
func (f *FasterWhisper) Args(audioPath string, opts DecodeOptions) []string {
	args := []string{
		"-",
		"--audio", audioPath,
		"--model", f.model.Name,
		"--device", f.engine.Device,
		"--compute-type", f.engine.ComputeType,
		"--download-root", f.engine.DownloadRoot,
	}
	if f.model.LocalFilesOnly {
		args = append(args, "--local-files-only")
	}
	args = append(args,
		"--beam-size", strconv.Itoa(opts.BeamSize),
		"--best-of", strconv.Itoa(opts.BestOf),
		"--condition-on-previous-text", strconv.FormatBool(opts.ConditionOnPreviousText),
		"--vad-filter", strconv.FormatBool(opts.VADFilter),
	)
	if opts.Language != "" {
		args = append(args, "--language", opts.Language)
	}
	if opts.InitialPrompt != "" {
		args = append(args, "--initial-prompt", opts.InitialPrompt)
	}
	return args
}

type streamHeader struct {
	Duration float64 `json:"duration"`
	Language string  `json:"language"`
}

type streamSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcribe 启动辅助进程并读取头部信息，片段在消费时才逐个读取
func (f *FasterWhisper) Transcribe(ctx context.Context, audioPath string, opts DecodeOptions) (*Transcription, error) {
	cmd := exec.CommandContext(ctx, f.engine.PythonPath, f.Args(audioPath, opts)...) //nolint:gosec
	cmd.Stdin = bytes.NewReader(helperScript)

	stderr := &lockedBuffer{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("创建输出管道失败: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("启动识别进程失败: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	stream := &processStream{cmd: cmd, scanner: scanner, stderr: stderr}

	if !scanner.Scan() {
		err := stream.finish(scanner.Err())
		if err == nil {
			err = errors.New("识别进程没有输出任何结果")
		}
		return nil, err
	}

	var header streamHeader
	if err := json.Unmarshal(scanner.Bytes(), &header); err != nil {
		stream.Close()
		return nil, fmt.Errorf("解析识别结果头部失败: %w", err)
	}

	return &Transcription{
		Segments: stream,
		Duration: header.Duration,
		Language: header.Language,
	}, nil
}

// processStream 从辅助进程的标准输出中逐行读取片段
type processStream struct {
	cmd     *exec.Cmd
	scanner *bufio.Scanner
	stderr  *lockedBuffer

	current models.Segment
	err     error
	done    bool
}

func (s *processStream) Next() bool {
	if s.done {
		return false
	}

	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var seg streamSegment
		if err := json.Unmarshal(line, &seg); err != nil {
			s.err = fmt.Errorf("解析识别片段失败: %w", err)
			s.Close()
			return false
		}
		s.current = models.Segment{Start: seg.Start, End: seg.End, Text: seg.Text}
		return true
	}

	s.err = s.finish(s.scanner.Err())
	return false
}

func (s *processStream) Segment() models.Segment {
	return s.current
}

func (s *processStream) Err() error {
	return s.err
}

// Close 终止尚未结束的辅助进程，可以重复调用
func (s *processStream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	return nil
}

// finish 等待进程退出，把退出状态和 stderr 转换为错误
func (s *processStream) finish(readErr error) error {
	if s.done {
		return readErr
	}
	s.done = true

	waitErr := s.cmd.Wait()
	if readErr == nil && waitErr == nil {
		return nil
	}

	cause := waitErr
	if readErr != nil {
		cause = readErr
	}
	if msg := strings.TrimSpace(s.stderr.String()); msg != "" {
		return fmt.Errorf("%w: %s", cause, lastLine(msg))
	}
	return cause
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

var _ io.Writer = (*lockedBuffer)(nil)

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
