package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/asr"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/audio"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/export"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/models"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

// AudioNormalizer 把输入媒体转换为识别所需的 wav
type AudioNormalizer interface {
	Normalize(ctx context.Context, input, output string) error
}

// Transcriber 对标准化后的音频进行识别
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, req models.ProcessingRequest) (*asr.Transcription, error)
}

// TempAllocator 分配标准化音频使用的临时文件
type TempAllocator interface {
	Allocate() (*audio.TempFile, error)
}

// ProgressReporter 接收单个文件的处理进度
type ProgressReporter interface {
	UpdateProgress(file string, fraction float64)
	CompleteProgress(file string, result *models.FileResult)
}

type noopProgress struct{}

func (noopProgress) UpdateProgress(string, float64) {}
func (noopProgress) CompleteProgress(string, *models.FileResult) {}

// FileProcessor 处理单个文件：标准化 -> 识别 -> 过滤 -> 写出字幕 -> 清理临时文件
type FileProcessor struct {
	normalizer  AudioNormalizer
	transcriber Transcriber
	temps       TempAllocator
	filter      *export.SegmentFilter
	progress    ProgressReporter
	logger      logrus.FieldLogger
}

// NewFileProcessor 创建单文件处理器
func NewFileProcessor(normalizer AudioNormalizer, transcriber Transcriber, temps TempAllocator, filter *export.SegmentFilter, logger logrus.FieldLogger) *FileProcessor {
	if filter == nil {
		filter = export.NewSegmentFilter("")
	}
	return &FileProcessor{
		normalizer:  normalizer,
		transcriber: transcriber,
		temps:       temps,
		filter:      filter,
		progress:    noopProgress{},
		logger:      utils.OrDefault(logger),
	}
}

// WithProgress 设置进度接收者
func (p *FileProcessor) WithProgress(reporter ProgressReporter) *FileProcessor {
	if reporter != nil {
		p.progress = reporter
	}
	return p
}

// Process 处理一个文件。任何错误（包括 panic）都被记录在返回的结果中，不会向上传播；
// 临时文件在所有退出路径上都会被删除。
func (p *FileProcessor) Process(ctx context.Context, req models.ProcessingRequest) (result *models.FileResult) {
	start := time.Now()
	result = &models.FileResult{InputPath: req.InputPath, Status: models.StatusFailed}
	log := p.logger.WithField("file", req.InputPath)

	defer func() {
		if r := recover(); r != nil {
			result.Status = models.StatusFailed
			result.Err = fmt.Errorf("处理文件时发生意外错误: %v", r)
			log.WithField("error_kind", "unexpected").Errorf("处理文件失败 %s: %v", req.InputPath, result.Err)
		}
		result.ProcessTime = time.Since(start)
		p.progress.CompleteProgress(req.InputPath, result)
	}()

	log.Infof("开始处理文件: %s (%s)", req.InputPath, utils.FormatFileSize(utils.FileSize(req.InputPath)))

	if err := p.run(ctx, req, result, log); err != nil {
		result.Status = models.StatusFailed
		result.Err = err
		log.WithField("error_kind", utils.Kind(err)).Errorf("处理文件失败 %s: %v", req.InputPath, err)
	}
	return result
}

func (p *FileProcessor) run(ctx context.Context, req models.ProcessingRequest, result *models.FileResult, log logrus.FieldLogger) error {
	tmp, err := p.temps.Allocate()
	if err != nil {
		return err
	}
	defer tmp.Release()

	if err := p.normalizer.Normalize(ctx, req.InputPath, tmp.Path); err != nil {
		return err
	}

	transcription, err := p.transcriber.Transcribe(ctx, tmp.Path, req)
	if err != nil {
		return err
	}
	stream := transcription.Segments
	defer stream.Close()

	result.Duration = transcription.Duration
	log.Infof("检测到语言 '%s'，时长 %s",
		transcription.Language, utils.FormatTimeDuration(transcription.Duration))

	builder := export.NewSRTBuilder()
	lastPercent := -1
	for stream.Next() {
		seg := stream.Segment()
		result.Segments++

		fraction := ProgressFraction(seg.End, transcription.Duration)
		p.progress.UpdateProgress(req.InputPath, fraction)
		// 只在整数百分比变化时记录，终端没有进度条时这是唯一的进度输出
		if percent := int(fraction * 100); percent != lastPercent {
			lastPercent = percent
			log.Infof("进度 [%d%%] %s", percent, filepath.Base(req.InputPath))
		}

		if text, ok := p.filter.Clean(seg.Text); ok {
			builder.Add(seg.Start, seg.End, text)
		}
	}
	if err := stream.Err(); err != nil {
		return err
	}

	if builder.Len() == 0 {
		result.Status = models.StatusEmpty
		log.Warnf("没有有效片段: %s", req.InputPath)
		return nil
	}

	output := utils.SubtitlePath(req.InputPath)
	if err := export.WriteSRT(output, builder.String()); err != nil {
		return err
	}

	result.Status = models.StatusSucceeded
	result.OutputPath = output
	result.Blocks = builder.Len()
	log.Infof("已导出SRT字幕: %s", output)
	return nil
}

// ProgressFraction 计算识别进度，总时长未知时为 0，结果限制在 [0, 1]
func ProgressFraction(end, total float64) float64 {
	if total <= 0 {
		return 0
	}
	fraction := end / total
	switch {
	case fraction < 0:
		return 0
	case fraction > 1:
		return 1
	}
	return fraction
}
