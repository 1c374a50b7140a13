package ui

import (
	"path/filepath"
	"sync"

	"github.com/fatih/color"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/models"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

// ProgressManager 为每个正在处理的文件维护一个进度条，并打印处理结果
type ProgressManager struct {
	progressBars map[string]*ProgressBar
	mutex        sync.Mutex
	enabled      bool
	terminal     *TerminalManager
}

// NewProgressManager 创建新的进度管理器。enabled 为 false 时只打印结果行。
func NewProgressManager(terminal *TerminalManager, enabled bool) *ProgressManager {
	return &ProgressManager{
		progressBars: make(map[string]*ProgressBar),
		enabled:      enabled && terminal.Interactive(),
		terminal:     terminal,
	}
}

// UpdateProgress 更新文件的识别进度，fraction 取值 [0, 1]
func (pm *ProgressManager) UpdateProgress(file string, fraction float64) {
	if !pm.enabled {
		return
	}

	pm.mutex.Lock()
	bar, exists := pm.progressBars[file]
	if !exists {
		bar = NewProgressBar(100, filepath.Base(file), "", func(line string) {
			pm.terminal.UpdateProgress(color.CyanString(line))
		})
		pm.progressBars[file] = bar
	}
	pm.mutex.Unlock()

	bar.Update(int(fraction*100), "")
}

// CompleteProgress 结束文件的进度条并打印结果
func (pm *ProgressManager) CompleteProgress(file string, result *models.FileResult) {
	pm.mutex.Lock()
	delete(pm.progressBars, file)
	pm.mutex.Unlock()

	pm.terminal.PrintMsg("%s", ResultLine(result))
}

// Active 返回正在显示的进度条数量
func (pm *ProgressManager) Active() int {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	return len(pm.progressBars)
}

// ResultLine 生成单个文件的结果行
func ResultLine(result *models.FileResult) string {
	elapsed := utils.FormatTimeDuration(result.ProcessTime.Seconds())
	switch result.Status {
	case models.StatusSucceeded:
		return color.GreenString("✓ %s -> %s (%d 条字幕, %s)",
			result.InputPath, result.OutputPath, result.Blocks, elapsed)
	case models.StatusEmpty:
		return color.YellowString("- %s: 没有有效片段 (%s)", result.InputPath, elapsed)
	default:
		return color.RedString("✗ %s: %v", result.InputPath, result.Err)
	}
}

// PrintSummary 打印批处理汇总
func PrintSummary(terminal *TerminalManager, summary *models.BatchSummary) {
	terminal.PrintMsg("%s", color.New(color.Bold).Sprintf(
		"完成: 成功 %d, 无有效片段 %d, 失败 %d, 未处理 %d, 用时 %s",
		summary.Succeeded, summary.Empty, summary.Failed, summary.Skipped,
		utils.FormatTimeDuration(summary.Elapsed.Seconds())))
}
