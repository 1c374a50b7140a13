package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

// MediaFile 表示一个媒体文件
type MediaFile struct {
	Path        string    // 文件路径
	Name        string    // 文件名
	Ext         string    // 文件扩展名（小写）
	Size        int64     // 文件大小（字节）
	ModTime     time.Time // 修改时间
	HasSubtitle bool      // 同名 .srt 是否已存在
}

// MediaScanner 用于扫描媒体文件
type MediaScanner struct {
	extensions map[string]struct{}
	logger     logrus.FieldLogger
}

// NewMediaScanner 创建新的媒体扫描器，extensions 为带点的扩展名列表
func NewMediaScanner(extensions []string, logger logrus.FieldLogger) *MediaScanner {
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}
	return &MediaScanner{
		extensions: exts,
		logger:     utils.OrDefault(logger),
	}
}

// IsMediaFile 根据扩展名判断是否为支持的媒体文件，隐藏文件不算
func (s *MediaScanner) IsMediaFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	_, ok := s.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ScanDirectory 扫描指定目录中的媒体文件（非递归），结果按文件名排序
func (s *MediaScanner) ScanDirectory(dir string) ([]MediaFile, error) {
	s.logger.Infof("开始扫描目录: %s", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var mediaFiles []MediaFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if !s.IsMediaFile(path) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.logger.Warnf("获取文件信息失败: %v", err)
			continue
		}

		mediaFiles = append(mediaFiles, MediaFile{
			Path:        path,
			Name:        entry.Name(),
			Ext:         strings.ToLower(filepath.Ext(path)),
			Size:        info.Size(),
			ModTime:     info.ModTime(),
			HasSubtitle: utils.CheckFileExists(utils.SubtitlePath(path)),
		})
	}

	sort.Slice(mediaFiles, func(i, j int) bool {
		return mediaFiles[i].Name < mediaFiles[j].Name
	})

	s.logger.Infof("扫描完成，共找到 %d 个媒体文件", len(mediaFiles))
	return mediaFiles, nil
}

// FilterPending 过滤出还没有字幕、且不在 processed 中的文件
func (s *MediaScanner) FilterPending(files []MediaFile, processed map[string]bool) []MediaFile {
	var pending []MediaFile
	for _, file := range files {
		if file.HasSubtitle || processed[file.Path] {
			continue
		}
		pending = append(pending, file)
	}

	s.logger.Infof("过滤后剩余 %d 个新文件需要处理", len(pending))
	return pending
}

// Paths 返回文件路径列表
func Paths(files []MediaFile) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths
}
