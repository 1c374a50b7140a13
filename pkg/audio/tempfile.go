package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

// TempFileManager 为标准化后的音频分配唯一的临时文件，并负责删除
type TempFileManager struct {
	Dir    string
	logger logrus.FieldLogger
}

// TempFile 一个已分配的临时文件，由创建它的处理流程独占
type TempFile struct {
	Path    string
	manager *TempFileManager
}

// NewTempFileManager 创建临时文件管理器，dir 为空时使用系统临时目录
func NewTempFileManager(dir string, logger logrus.FieldLogger) *TempFileManager {
	if dir == "" {
		dir = os.TempDir()
	}
	return &TempFileManager{
		Dir:    dir,
		logger: utils.OrDefault(logger),
	}
}

// Allocate 分配一个新的 .wav 临时文件。
// 文件以 O_EXCL 方式预先创建，保证并发处理时路径互不冲突。
func (m *TempFileManager) Allocate() (*TempFile, error) {
	if err := utils.EnsureDirExists(m.Dir); err != nil {
		return nil, fmt.Errorf("创建临时目录失败: %w", err)
	}

	for attempt := 0; attempt < 3; attempt++ {
		path := filepath.Join(m.Dir, fmt.Sprintf("normalized_%s.wav", uuid.NewString()))
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("创建临时文件失败: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return nil, fmt.Errorf("创建临时文件失败: %w", err)
		}
		m.logger.WithField("path", path).Debug("已分配临时文件")
		return &TempFile{Path: path, manager: m}, nil
	}

	return nil, fmt.Errorf("创建临时文件失败: 无法生成唯一文件名")
}

// Release 删除临时文件；文件不存在时不做任何事。可以重复调用。
func (f *TempFile) Release() {
	if f == nil || f.Path == "" {
		return
	}
	if !utils.CheckFileExists(f.Path) {
		return
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		f.manager.logger.WithField("path", f.Path).Warnf("删除临时文件失败: %v", err)
		return
	}
	f.manager.logger.Infof("已删除临时文件: %s", f.Path)
}
