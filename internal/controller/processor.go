package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ccp-p/asr-media-cli/subgen/internal/adapters"
	"github.com/ccp-p/asr-media-cli/subgen/internal/ui"
	"github.com/ccp-p/asr-media-cli/subgen/internal/watcher"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/asr"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/audio"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/export"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/models"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/processor"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/scanner"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

// Options 命令行传入的控制器参数，非零值覆盖配置文件
type Options struct {
	ConfigFile string
	LogLevel   string
	LogFile    string
	Workers    int
	NoProgress bool
	Out        io.Writer // 控制台输出，默认 os.Stdout
}

// ProcessorController 处理器控制器，协调各个组件工作
type ProcessorController struct {
	Config *models.Config
	Logger *logrus.Logger

	// UI组件
	Terminal        *ui.TerminalManager
	ProgressManager *ui.ProgressManager

	// 处理组件
	Engines        *asr.EngineSelector
	Normalizer     *audio.Normalizer
	FileProcessor  *processor.FileProcessor
	BatchProcessor *processor.BatchProcessor

	// 上下文控制
	ctx        context.Context
	cancelFunc context.CancelFunc

	// 状态数据
	Stats struct {
		StartTime       time.Time
		TotalFiles      int
		SuccessfulFiles int
		EmptyFiles      int
		FailedFiles     int
		SkippedFiles    int
	}

	// 资源管理
	cleanup []func()
	mu      sync.Mutex
}

// LoadConfig 加载默认配置、配置文件和命令行覆盖项
func LoadConfig(opts Options) (*models.Config, error) {
	config := models.NewDefaultConfig()
	if opts.ConfigFile != "" {
		if err := config.LoadFromFile(opts.ConfigFile); err != nil {
			return nil, err
		}
	}

	if opts.LogLevel != "" {
		config.LogLevel = opts.LogLevel
	}
	if opts.LogFile != "" {
		config.LogFile = opts.LogFile
	}
	if opts.Workers > 0 {
		config.MaxWorkers = opts.Workers
	}
	if opts.NoProgress {
		config.ShowProgress = false
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// NewProcessorController 创建处理器控制器
func NewProcessorController(opts Options) (*ProcessorController, error) {
	config, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	ctx, cancel := context.WithCancel(context.Background())
	pc := &ProcessorController{
		Config:     config,
		Terminal:   ui.NewTerminalManager(out),
		ctx:        ctx,
		cancelFunc: cancel,
	}

	// 日志经过终端管理器输出，避免与进度条混在一行
	logger, closer, err := utils.NewLoggerWithOutput(pc.Terminal, config.LogLevel, config.LogFile)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	pc.Logger = logger
	pc.addCleanup(func() { closer.Close() })
	pc.addCleanup(cancel)

	pc.ProgressManager = ui.NewProgressManager(pc.Terminal, config.ShowProgress)

	if err := pc.initComponents(); err != nil {
		pc.Cleanup()
		return nil, err
	}
	return pc, nil
}

// 初始化所有组件
func (pc *ProcessorController) initComponents() error {
	pc.Engines = asr.NewEngineSelector(pc.Logger)
	pc.registerEngines()

	engineName := asr.EngineFasterWhisper
	if pc.Config.UseStubEngine {
		engineName = asr.EngineStub
	}
	factory, err := pc.Engines.Select(engineName)
	if err != nil {
		return err
	}

	pc.Normalizer = audio.NewNormalizer(pc.Config.FFmpegPath, pc.Logger)
	pc.FileProcessor = processor.NewFileProcessor(
		pc.Normalizer,
		asr.NewAdapter(pc.Config, factory, pc.Logger),
		audio.NewTempFileManager(pc.Config.TempDirectory(), pc.Logger),
		export.NewSegmentFilter(pc.Config.NoisePunctuation),
		pc.Logger,
	).WithProgress(pc.ProgressManager)

	pc.BatchProcessor = processor.NewBatchProcessor(pc.FileProcessor, pc.Config.MaxWorkers, pc.Logger)
	return nil
}

// 注册识别引擎
func (pc *ProcessorController) registerEngines() {
	pc.Engines.RegisterEngine(asr.EngineFasterWhisper, asr.NewFasterWhisper)
	pc.Engines.RegisterEngine(asr.EngineStub, asr.NewStubRecognizer)
}

// Context 返回控制器的上下文，收到中断信号后被取消
func (pc *ProcessorController) Context() context.Context {
	return pc.ctx
}

// Preflight 检查 ffmpeg 是否可用。不可用时只给出警告，每个文件仍会单独报告转码失败。
func (pc *ProcessorController) Preflight() bool {
	if pc.Normalizer.Available(pc.ctx) {
		return true
	}
	pc.Logger.Warnf("未找到可用的 ffmpeg (%s)，文件转码将会失败", pc.Config.FFmpegPath)
	return false
}

// ProcessFiles 按顺序为给定文件生成字幕
func (pc *ProcessorController) ProcessFiles(model, language string, files []string) *models.BatchSummary {
	pc.Stats.StartTime = time.Now()
	pc.Preflight()

	summary := pc.BatchProcessor.Run(pc.ctx, model, language, files)
	pc.updateStats(summary)
	ui.PrintSummary(pc.Terminal, summary)
	return summary
}

// StartWatchMode 处理目录中尚无字幕的媒体文件，并持续监控新文件直到收到中断信号
func (pc *ProcessorController) StartWatchMode(model, language, dir string) error {
	if !utils.CheckDirExists(dir) {
		return utils.NewUsageError("目录不存在: %s", dir)
	}
	pc.Stats.StartTime = time.Now()
	pc.Preflight()

	summary := &models.BatchSummary{}
	var summaryMu sync.Mutex
	processorAdapter := adapters.NewFileProcessorAdapter(context.WithoutCancel(pc.ctx), pc.FileProcessor, model, language).
		OnResult(func(result *models.FileResult) {
			summaryMu.Lock()
			defer summaryMu.Unlock()
			summary.Add(result)
		})

	mediaWatcher, err := watcher.NewMediaWatcher(
		dir,
		scanner.NewMediaScanner(pc.Config.MediaExtensions, pc.Logger),
		processorAdapter,
		time.Duration(pc.Config.WatchDebounceSeconds)*time.Second,
		pc.Logger,
	)
	if err != nil {
		return err
	}

	pc.Logger.Info("监控已启动，按Ctrl+C退出...")
	if err := mediaWatcher.Run(pc.ctx); err != nil {
		return err
	}

	summaryMu.Lock()
	summary.Elapsed = time.Since(pc.Stats.StartTime)
	pc.updateStats(summary)
	summaryMu.Unlock()
	ui.PrintSummary(pc.Terminal, summary)
	return nil
}

// SetupSignalHandlers 收到 SIGINT/SIGTERM 时取消上下文：不再开始新的文件
func (pc *ProcessorController) SetupSignalHandlers() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	pc.addCleanup(func() { signal.Stop(c) })

	go func() {
		select {
		case <-c:
			pc.Logger.Info("接收到中断信号，正在停止...")
			pc.cancelFunc()
		case <-pc.ctx.Done():
		}
	}()
}

// 添加清理函数
func (pc *ProcessorController) addCleanup(cleanup func()) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.cleanup = append(pc.cleanup, cleanup)
}

// Cleanup 逆序执行所有清理函数，可以重复调用
func (pc *ProcessorController) Cleanup() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	for i := len(pc.cleanup) - 1; i >= 0; i-- {
		pc.cleanup[i]()
	}
	pc.cleanup = nil
}

// 统计处理结果
func (pc *ProcessorController) updateStats(summary *models.BatchSummary) {
	pc.Stats.TotalFiles = len(summary.Results) + summary.Skipped
	pc.Stats.SuccessfulFiles = summary.Succeeded
	pc.Stats.EmptyFiles = summary.Empty
	pc.Stats.FailedFiles = summary.Failed
	pc.Stats.SkippedFiles = summary.Skipped
}
