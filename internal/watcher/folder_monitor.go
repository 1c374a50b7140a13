package watcher

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

// FileEventHandler 是处理文件事件的接口
type FileEventHandler interface {
	OnFileCreated(filePath string)
	OnFileDeleted(filePath string)
}

// FolderMonitor 监控文件夹变化。同一文件在防抖时间内的多次写入只触发一次 OnFileCreated。
type FolderMonitor struct {
	watcher      *fsnotify.Watcher
	folderPath   string
	isTarget     func(path string) bool
	handler      FileEventHandler
	debounceTime time.Duration
	pendingFiles map[string]*time.Timer
	mutex        sync.Mutex
	stopChan     chan struct{}
	stopOnce     sync.Once
	done         chan struct{}
	started      bool
	logger       logrus.FieldLogger
}

// NewFolderMonitor 创建新的文件夹监控器，isTarget 用于筛选需要关注的文件
func NewFolderMonitor(folderPath string, isTarget func(string) bool, handler FileEventHandler, debounceTime time.Duration, logger logrus.FieldLogger) (*FolderMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监控器失败: %w", err)
	}

	return &FolderMonitor{
		watcher:      watcher,
		folderPath:   folderPath,
		isTarget:     isTarget,
		handler:      handler,
		debounceTime: debounceTime,
		pendingFiles: make(map[string]*time.Timer),
		stopChan:     make(chan struct{}),
		done:         make(chan struct{}),
		logger:       utils.OrDefault(logger),
	}, nil
}

// Start 开始监控文件夹。只能调用一次，失败后仍需调用 Stop 释放资源。
func (m *FolderMonitor) Start() error {
	if !utils.CheckDirExists(m.folderPath) {
		return fmt.Errorf("监控目录不存在: %s", m.folderPath)
	}

	if err := m.watcher.Add(m.folderPath); err != nil {
		return fmt.Errorf("添加监控文件夹失败: %w", err)
	}

	m.started = true
	go m.watchLoop()

	m.logger.Infof("开始监控文件夹: %s", m.folderPath)
	return nil
}

// Stop 停止监控，取消所有尚未触发的事件。可以重复调用。
func (m *FolderMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.watcher.Close()
		if m.started {
			<-m.done
		}

		m.mutex.Lock()
		for path, timer := range m.pendingFiles {
			timer.Stop()
			delete(m.pendingFiles, path)
		}
		m.mutex.Unlock()

		m.logger.Infof("停止监控文件夹: %s", m.folderPath)
	})
}

// Pending 返回等待防抖结束的文件数
func (m *FolderMonitor) Pending() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.pendingFiles)
}

func (m *FolderMonitor) watchLoop() {
	defer close(m.done)
	for {
		select {
		case <-m.stopChan:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.handleFileEvent(event)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Errorf("监控文件夹时出错: %v", err)
		}
	}
}

func (m *FolderMonitor) handleFileEvent(event fsnotify.Event) {
	filePath := event.Name

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		m.cancelPending(filePath)
		if m.handler != nil {
			m.handler.OnFileDeleted(filePath)
		}
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !m.isTargetFile(filePath) {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if timer, exists := m.pendingFiles[filePath]; exists {
		timer.Stop()
	}
	m.pendingFiles[filePath] = time.AfterFunc(m.debounceTime, func() {
		m.processFile(filePath)
	})

	m.logger.Debugf("检测到文件变化: %s", filePath)
}

func (m *FolderMonitor) cancelPending(filePath string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if timer, exists := m.pendingFiles[filePath]; exists {
		timer.Stop()
		delete(m.pendingFiles, filePath)
	}
}

func (m *FolderMonitor) isTargetFile(filePath string) bool {
	fileInfo, err := os.Stat(filePath)
	if err != nil || fileInfo.IsDir() {
		return false
	}
	return m.isTarget == nil || m.isTarget(filePath)
}

func (m *FolderMonitor) processFile(filePath string) {
	m.mutex.Lock()
	delete(m.pendingFiles, filePath)
	m.mutex.Unlock()

	select {
	case <-m.stopChan:
		return
	default:
	}

	if !utils.CheckFileExists(filePath) {
		return
	}

	m.logger.Infof("准备处理文件: %s", filePath)
	if m.handler != nil {
		m.handler.OnFileCreated(filePath)
	}
}
