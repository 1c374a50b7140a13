package asr

import "strings"

// ModelSource 描述如何加载一个模型
type ModelSource struct {
	ID             string // 用户传入的模型标识
	Name           string // 实际加载时使用的名称
	LocalFilesOnly bool   // 只从本地目录加载，不访问远程仓库
}

// ResolveModel 把模型标识映射为加载参数，需要与已有的模型标识保持兼容：
// 以 "distil" 开头的标识去掉其中所有的 "-whisper"（distil-whisper-large-v3 -> distil-large-v3）；
// 标识中含有 "/" 时视为远程仓库路径，允许远程加载，否则只加载本地文件。
func ResolveModel(id string) ModelSource {
	name := id
	if strings.HasPrefix(id, "distil") {
		name = strings.ReplaceAll(id, "-whisper", "")
	}
	return ModelSource{
		ID:             id,
		Name:           name,
		LocalFilesOnly: !strings.Contains(id, "/"),
	}
}
