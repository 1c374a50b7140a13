package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/models"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

// FormatSRTTime 将秒数格式化为SRT时间格式 (HH:MM:SS,mmm)。
// 毫秒由 秒数*1000 截断得到，负数按 0 处理。
func FormatSRTTime(seconds float64) string {
	ms := int64(seconds * 1000)
	if ms < 0 {
		ms = 0
	}

	hours := ms / 3_600_000
	minutes := ms % 3_600_000 / 60_000
	secs := ms % 60_000 / 1000
	millis := ms % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// SRTBuilder 按接收顺序生成连续编号的字幕块
type SRTBuilder struct {
	blocks []models.SubtitleBlock
}

// NewSRTBuilder 创建一个新的字幕构建器
func NewSRTBuilder() *SRTBuilder {
	return &SRTBuilder{}
}

// Add 追加一个已通过过滤的片段，序号从 1 开始连续递增
func (b *SRTBuilder) Add(start, end float64, text string) models.SubtitleBlock {
	block := models.SubtitleBlock{
		Index: len(b.blocks) + 1,
		Start: FormatSRTTime(start),
		End:   FormatSRTTime(end),
		Text:  text,
	}
	b.blocks = append(b.blocks, block)
	return block
}

// Len 返回已生成的字幕块数量
func (b *SRTBuilder) Len() int {
	return len(b.blocks)
}

// Blocks 返回已生成的字幕块
func (b *SRTBuilder) Blocks() []models.SubtitleBlock {
	return b.blocks
}

// String 生成完整的 SRT 内容，字幕块之间以空行分隔
func (b *SRTBuilder) String() string {
	var sb strings.Builder
	for i, block := range b.blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(FormatBlock(block))
	}
	return sb.String()
}

// FormatBlock 格式化单个字幕块，以换行结尾
func FormatBlock(block models.SubtitleBlock) string {
	return fmt.Sprintf("%d\n%s --> %s\n%s\n", block.Index, block.Start, block.End, block.Text)
}

// WriteSRT 一次性写入完整的字幕内容，失败时返回 *utils.WriteError
func WriteSRT(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return &utils.WriteError{Path: path, Cause: err}
	}
	return nil
}
