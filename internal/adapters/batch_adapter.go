package adapters

import (
	"context"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/models"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/processor"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

// MediaProcessor 是处理媒体文件的接口
type MediaProcessor interface {
	ProcessFile(filePath string) bool
	IsRecognizedFile(filePath string) bool
}

// FileProcessorAdapter 把单文件处理器适配为 MediaProcessor，固定模型和语言
type FileProcessorAdapter struct {
	ctx      context.Context
	handler  processor.FileHandler
	model    string
	language string
	onResult func(*models.FileResult)
}

// NewFileProcessorAdapter 创建新的处理器适配器
func NewFileProcessorAdapter(ctx context.Context, handler processor.FileHandler, model, language string) *FileProcessorAdapter {
	return &FileProcessorAdapter{
		ctx:      ctx,
		handler:  handler,
		model:    model,
		language: language,
	}
}

// OnResult 设置每个文件处理完成后的回调
func (a *FileProcessorAdapter) OnResult(fn func(*models.FileResult)) *FileProcessorAdapter {
	a.onResult = fn
	return a
}

// ProcessFile 处理文件，返回是否写出了字幕
func (a *FileProcessorAdapter) ProcessFile(filePath string) bool {
	result := a.handler.Process(a.ctx, models.ProcessingRequest{
		InputPath: filePath,
		Model:     a.model,
		Language:  a.language,
	})
	if a.onResult != nil {
		a.onResult(result)
	}
	return result.Succeeded()
}

// IsRecognizedFile 同名字幕文件已存在时视为已处理
func (a *FileProcessorAdapter) IsRecognizedFile(filePath string) bool {
	return utils.CheckFileExists(utils.SubtitlePath(filePath))
}
