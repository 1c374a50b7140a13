package models

// Segment 表示一个语音识别结果段落
type Segment struct {
	Start float64 // 开始时间（秒）
	End   float64 // 结束时间（秒）
	Text  string  // 识别出的文本内容
}

// ProcessingRequest 单个文件的处理请求，一次调用内不可变
type ProcessingRequest struct {
	InputPath string // 输入媒体文件
	Model     string // 模型标识
	Language  string // 语言代码，"auto" 表示自动检测
}

// SubtitleBlock 一个 SRT 字幕块
type SubtitleBlock struct {
	Index int    // 从 1 开始的序号，按输出顺序连续分配
	Start string // HH:MM:SS,mmm
	End   string // HH:MM:SS,mmm
	Text  string
}
