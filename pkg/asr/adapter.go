package asr

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/models"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

// Adapter 把配置和请求转换为识别引擎调用
type Adapter struct {
	config  *models.Config
	factory Factory
	logger  logrus.FieldLogger
}

// NewAdapter 创建识别适配器
func NewAdapter(config *models.Config, factory Factory, logger logrus.FieldLogger) *Adapter {
	if factory == nil {
		factory = NewFasterWhisper
	}
	return &Adapter{
		config:  config,
		factory: factory,
		logger:  utils.OrDefault(logger),
	}
}

// Options 根据语言代码生成解码参数。"auto" 交给模型检测；
// 提示词只在该语言配置了提示词时使用。
func (a *Adapter) Options(language string) DecodeOptions {
	opts := DecodeOptions{
		BeamSize:                a.config.BeamSize,
		BestOf:                  a.config.BestOf,
		ConditionOnPreviousText: a.config.ConditionOnPreviousText,
		VADFilter:               a.config.VADFilter,
	}
	if language != models.LanguageAuto {
		opts.Language = language
		opts.InitialPrompt = a.config.PromptFor(language)
	}
	return opts
}

// Engine 返回创建识别引擎使用的运行参数
func (a *Adapter) Engine() EngineConfig {
	return EngineConfig{
		Device:       a.config.Device,
		ComputeType:  a.config.ComputeType,
		DownloadRoot: a.config.ModelRoot,
		PythonPath:   a.config.PythonPath,
	}
}

// Transcribe 为单个文件创建识别引擎并开始识别。
// 返回的错误以及片段序列中的错误都包装为 *utils.RecognitionError。
func (a *Adapter) Transcribe(ctx context.Context, audioPath string, req models.ProcessingRequest) (*Transcription, error) {
	model := ResolveModel(req.Model)
	a.logger.WithFields(logrus.Fields{
		"model":       model.Name,
		"local_files": model.LocalFilesOnly,
		"language":    req.Language,
	}).Debug("加载识别模型")

	rec, err := a.factory(model, a.Engine())
	if err != nil {
		return nil, &utils.RecognitionError{Model: req.Model, Cause: err}
	}

	result, err := rec.Transcribe(ctx, audioPath, a.Options(req.Language))
	if err != nil {
		return nil, &utils.RecognitionError{Model: req.Model, Cause: err}
	}

	result.Segments = &wrappedStream{SegmentStream: result.Segments, model: req.Model}
	return result, nil
}

type wrappedStream struct {
	SegmentStream
	model string
}

func (w *wrappedStream) Err() error {
	if err := w.SegmentStream.Err(); err != nil {
		return &utils.RecognitionError{Model: w.model, Cause: err}
	}
	return nil
}
