package asr

import (
	"context"
	"errors"
	"sync"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/models"
)

// StaticRecognizer 返回固定结果的识别引擎，用于测试和不依赖模型的试运行
type StaticRecognizer struct {
	Segments []models.Segment
	Duration float64
	Language string

	// TranscribeErr 不为空时 Transcribe 直接返回该错误
	TranscribeErr error
	// FailAfter 大于 0 时，产出 FailAfter 个片段后序列以 StreamErr 结束
	FailAfter int
	StreamErr error

	mu    sync.Mutex
	calls []DecodeOptions
}

// Transcribe 实现 Recognizer 接口
func (r *StaticRecognizer) Transcribe(ctx context.Context, audioPath string, opts DecodeOptions) (*Transcription, error) {
	r.mu.Lock()
	r.calls = append(r.calls, opts)
	r.mu.Unlock()
	if r.TranscribeErr != nil {
		return nil, r.TranscribeErr
	}

	stream := &sliceStream{segments: r.Segments, index: -1}
	if r.FailAfter > 0 {
		stream.failAfter = r.FailAfter
		stream.failErr = r.StreamErr
		if stream.failErr == nil {
			stream.failErr = errors.New("识别进程异常退出")
		}
	}

	lang := r.Language
	if lang == "" {
		lang = opts.Language
	}
	return &Transcription{Segments: stream, Duration: r.Duration, Language: lang}, nil
}

// Calls 返回每次调用的参数
func (r *StaticRecognizer) Calls() []DecodeOptions {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DecodeOptions(nil), r.calls...)
}

// StaticFactory 返回总是创建同一个静态引擎的 Factory。
// 同一个引擎会被所有文件共享，并发调用是安全的，每次调用产出独立的片段序列。
func StaticFactory(rec *StaticRecognizer) Factory {
	return func(model ModelSource, engine EngineConfig) (Recognizer, error) {
		return rec, nil
	}
}

type sliceStream struct {
	segments  []models.Segment
	index     int
	failAfter int
	failErr   error
	err       error
	closed    bool
}

func (s *sliceStream) Next() bool {
	if s.closed || s.err != nil {
		return false
	}
	if s.failAfter > 0 && s.index+1 >= s.failAfter {
		s.err = s.failErr
		return false
	}
	if s.index+1 >= len(s.segments) {
		return false
	}
	s.index++
	return true
}

func (s *sliceStream) Segment() models.Segment {
	if s.index < 0 || s.index >= len(s.segments) {
		return models.Segment{}
	}
	return s.segments[s.index]
}

func (s *sliceStream) Err() error {
	return s.err
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

// NewStubRecognizer 试运行使用的引擎，每个文件返回一条固定字幕，实现 Factory
func NewStubRecognizer(model ModelSource, engine EngineConfig) (Recognizer, error) {
	return &StaticRecognizer{
		Segments: []models.Segment{{Start: 0, End: 1, Text: "[stub] " + model.Name}},
		Duration: 1,
	}, nil
}
