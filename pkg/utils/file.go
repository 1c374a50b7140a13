package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// CheckFileExists 检查文件是否存在
func CheckFileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// CheckDirExists 检查目录是否存在
func CheckDirExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirExists 确保目录存在，如果不存在则创建
func EnsureDirExists(dirPath string) error {
	if dirPath == "" {
		return nil // 空路径视为可选
	}
	if !CheckDirExists(dirPath) {
		return os.MkdirAll(dirPath, 0755)
	}
	return nil
}

// SplitExt 拆分路径的扩展名。
// 与 filepath.Ext 不同，文件名开头的点不视为扩展名（".bashrc" 没有扩展名）。
func SplitExt(path string) (root, ext string) {
	base := filepath.Base(path)
	trimmed := strings.TrimLeft(base, ".")
	idx := strings.LastIndex(trimmed, ".")
	if idx < 0 {
		return path, ""
	}
	ext = trimmed[idx:]
	return path[:len(path)-len(ext)], ext
}

// SubtitlePath 返回与输入文件同目录、同名的 .srt 路径
func SubtitlePath(inputPath string) string {
	root, _ := SplitExt(inputPath)
	return root + ".srt"
}

// FileSize 返回文件大小，失败时返回 0
func FileSize(filePath string) int64 {
	info, err := os.Stat(filePath)
	if err != nil {
		return 0
	}
	return info.Size()
}
