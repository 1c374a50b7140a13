package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ccp-p/asr-media-cli/subgen/internal/adapters"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/scanner"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

// MediaWatcher 监控目录中新出现的媒体文件并逐个生成字幕
type MediaWatcher struct {
	dir       string
	scanner   *scanner.MediaScanner
	processor adapters.MediaProcessor
	monitor   *FolderMonitor

	queue     chan string
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	mutex     sync.Mutex
	queued    map[string]bool
	processed map[string]bool

	logger logrus.FieldLogger
}

// NewMediaWatcher 创建媒体文件监控器
func NewMediaWatcher(dir string, mediaScanner *scanner.MediaScanner, processor adapters.MediaProcessor, debounce time.Duration, logger logrus.FieldLogger) (*MediaWatcher, error) {
	w := &MediaWatcher{
		dir:       dir,
		scanner:   mediaScanner,
		processor: processor,
		queue:     make(chan string, 256),
		stopChan:  make(chan struct{}),
		queued:    make(map[string]bool),
		processed: make(map[string]bool),
		logger:    utils.OrDefault(logger),
	}

	monitor, err := NewFolderMonitor(dir, mediaScanner.IsMediaFile, w, debounce, w.logger)
	if err != nil {
		return nil, err
	}
	w.monitor = monitor
	return w, nil
}

// Start 处理目录中已有但没有字幕的文件，然后开始监控新文件。
// ctx 结束后不再把积压的文件放入队列。
func (w *MediaWatcher) Start(ctx context.Context) error {
	files, err := w.scanner.ScanDirectory(w.dir)
	if err != nil {
		w.monitor.Stop()
		return err
	}

	if err := w.monitor.Start(); err != nil {
		w.monitor.Stop()
		return err
	}

	w.wg.Add(1)
	go w.worker()

	w.mutex.Lock()
	pending := w.scanner.FilterPending(files, w.processed)
	w.mutex.Unlock()
	for _, path := range scanner.Paths(pending) {
		if !w.enqueue(ctx, path) {
			w.logger.Info("收到停止信号，不再排队积压文件")
			return nil
		}
	}

	w.logger.Info("媒体文件监控已启动")
	return nil
}

// Run 启动监控并阻塞到 ctx 结束
func (w *MediaWatcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

// Stop 停止监控。正在处理的文件会处理完毕，排队中的文件被丢弃。
func (w *MediaWatcher) Stop() {
	w.stopOnce.Do(func() {
		w.monitor.Stop()
		close(w.stopChan)
		w.wg.Wait()
		w.logger.Info("媒体文件监控已停止")
	})
}

// Processed 返回已处理的文件数
func (w *MediaWatcher) Processed() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return len(w.processed)
}

// OnFileCreated 实现 FileEventHandler
func (w *MediaWatcher) OnFileCreated(filePath string) {
	w.enqueue(context.Background(), filePath)
}

// OnFileDeleted 实现 FileEventHandler，文件被删除后允许重新处理同名文件
func (w *MediaWatcher) OnFileDeleted(filePath string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	delete(w.processed, filePath)
}

// enqueue 返回 false 表示监控已停止或 ctx 已结束，文件没有进入队列
func (w *MediaWatcher) enqueue(ctx context.Context, filePath string) bool {
	if ctx.Err() != nil || w.stopped() {
		return false
	}

	w.mutex.Lock()
	if w.queued[filePath] || w.processed[filePath] {
		w.mutex.Unlock()
		return true
	}
	if w.processor.IsRecognizedFile(filePath) {
		w.mutex.Unlock()
		w.logger.Debugf("字幕已存在，跳过: %s", filePath)
		return true
	}
	w.queued[filePath] = true
	w.mutex.Unlock()

	select {
	case w.queue <- filePath:
		return true
	case <-ctx.Done():
	case <-w.stopChan:
	}

	w.mutex.Lock()
	delete(w.queued, filePath)
	w.mutex.Unlock()
	return false
}

func (w *MediaWatcher) stopped() bool {
	select {
	case <-w.stopChan:
		return true
	default:
		return false
	}
}

func (w *MediaWatcher) worker() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stopChan:
			return
		case path := <-w.queue:
			// 队列和 stopChan 同时就绪时 select 随机选择
			if w.stopped() {
				return
			}
			w.processor.ProcessFile(path)

			w.mutex.Lock()
			delete(w.queued, path)
			w.processed[path] = true
			w.mutex.Unlock()
		}
	}
}
