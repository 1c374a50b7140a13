package processor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/models"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

// FileHandler 处理单个文件并返回结果，实现不得返回 nil
type FileHandler interface {
	Process(ctx context.Context, req models.ProcessingRequest) *models.FileResult
}

// BatchProcessor 按输入顺序处理一批文件，单个文件失败不影响其他文件
type BatchProcessor struct {
	handler    FileHandler
	maxWorkers int
	logger     logrus.FieldLogger
}

// NewBatchProcessor 创建批处理器。maxWorkers 小于等于 1 时顺序处理。
func NewBatchProcessor(handler FileHandler, maxWorkers int, logger logrus.FieldLogger) *BatchProcessor {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &BatchProcessor{
		handler:    handler,
		maxWorkers: maxWorkers,
		logger:     utils.OrDefault(logger),
	}
}

// Run 处理所有文件。ctx 被取消后不再开始新的文件，已开始的文件会处理完毕（包括清理）。
func (b *BatchProcessor) Run(ctx context.Context, model, language string, paths []string) *models.BatchSummary {
	start := time.Now()
	b.logger.WithFields(logrus.Fields{
		"model":    model,
		"language": language,
		"files":    len(paths),
		"workers":  b.maxWorkers,
	}).Info("开始批处理")

	var results []*models.FileResult
	if b.maxWorkers == 1 {
		results = b.runSequential(ctx, model, language, paths)
	} else {
		results = b.runConcurrent(ctx, model, language, paths)
	}

	summary := &models.BatchSummary{}
	for _, result := range results {
		if result == nil {
			summary.Skipped++
			continue
		}
		summary.Add(result)
	}
	summary.Elapsed = time.Since(start)

	if summary.Skipped > 0 {
		b.logger.Warnf("处理被中断，%d 个文件未处理", summary.Skipped)
	}
	b.logger.Infof("批处理完成: 成功 %d, 无有效片段 %d, 失败 %d, 用时 %s",
		summary.Succeeded, summary.Empty, summary.Failed, utils.FormatTimeDuration(summary.Elapsed.Seconds()))
	return summary
}

func (b *BatchProcessor) runSequential(ctx context.Context, model, language string, paths []string) []*models.FileResult {
	results := make([]*models.FileResult, len(paths))
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		results[i] = b.handler.Process(context.WithoutCancel(ctx), request(path, model, language))
	}
	return results
}

// runConcurrent 每个文件使用独立的识别引擎和临时文件，由 FileProcessor 保证
func (b *BatchProcessor) runConcurrent(ctx context.Context, model, language string, paths []string) []*models.FileResult {
	results := make([]*models.FileResult, len(paths))

	var g errgroup.Group
	g.SetLimit(b.maxWorkers)
	for i, path := range paths {
		i, path := i, path
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i] = b.handler.Process(context.WithoutCancel(ctx), request(path, model, language))
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func request(path, model, language string) models.ProcessingRequest {
	return models.ProcessingRequest{InputPath: path, Model: model, Language: language}
}
