package asr

import (
	"context"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/models"
)

// DecodeOptions 传给识别模型的解码参数
type DecodeOptions struct {
	BeamSize                int
	BestOf                  int
	ConditionOnPreviousText bool
	VADFilter               bool
	Language                string // 为空表示由模型自动检测
	InitialPrompt           string // 为空表示不使用提示词
}

// EngineConfig 创建识别引擎所需的运行参数
type EngineConfig struct {
	Device       string
	ComputeType  string
	DownloadRoot string
	PythonPath   string
}

// Transcription 一次识别的结果。Segments 只能按顺序消费一次。
type Transcription struct {
	Segments SegmentStream
	Duration float64 // 音频总时长（秒）
	Language string  // 模型检测或指定的语言
}

// SegmentStream 惰性的、只能前进的片段序列，用法与 bufio.Scanner 相同：
//
//	for stream.Next() {
//		seg := stream.Segment()
//	}
//	if err := stream.Err(); err != nil { ... }
type SegmentStream interface {
	Next() bool
	Segment() models.Segment
	Err() error
	Close() error
}

// Recognizer 语音识别引擎句柄。实现不保证可以被多个 goroutine 同时使用。
type Recognizer interface {
	Transcribe(ctx context.Context, audioPath string, opts DecodeOptions) (*Transcription, error)
}

// Factory 根据模型和引擎参数创建识别引擎，每个文件调用一次
type Factory func(model ModelSource, engine EngineConfig) (Recognizer, error)
