package models

import "time"

// FileStatus 单个文件的处理结果状态
type FileStatus string

const (
	StatusSucceeded FileStatus = "succeeded" // 已写出字幕文件
	StatusEmpty     FileStatus = "empty"     // 没有有效片段，未写出文件
	StatusFailed    FileStatus = "failed"    // 处理过程中出错
)

// FileResult 单个文件的处理结果，只用于日志和汇总
type FileResult struct {
	InputPath   string        `json:"input_path"`   // 处理的文件路径
	OutputPath  string        `json:"output_path"`  // 字幕文件路径，未写出时为空
	Status      FileStatus    `json:"status"`       // 处理状态
	Segments    int           `json:"segments"`     // 识别出的片段数
	Blocks      int           `json:"blocks"`       // 写出的字幕块数
	Duration    float64       `json:"duration"`     // 音频时长（秒）
	Err         error         `json:"-"`            // 失败原因
	ProcessTime time.Duration `json:"process_time"` // 处理时间
}

// Succeeded 是否成功写出了字幕文件
func (r FileResult) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// BatchSummary 一次批处理的汇总
type BatchSummary struct {
	Results   []*FileResult `json:"results"`   // 已处理文件的结果，按输入顺序排列
	Skipped   int           `json:"skipped"`   // 因中断而未处理的文件数
	Succeeded int           `json:"succeeded"` // 写出字幕的文件数
	Empty     int           `json:"empty"`     // 没有有效片段的文件数
	Failed    int           `json:"failed"`    // 失败的文件数
	Elapsed   time.Duration `json:"elapsed"`   // 总用时
}

// Add 记录一个文件的处理结果
func (s *BatchSummary) Add(result *FileResult) {
	s.Results = append(s.Results, result)
	switch result.Status {
	case StatusSucceeded:
		s.Succeeded++
	case StatusEmpty:
		s.Empty++
	default:
		s.Failed++
	}
}
