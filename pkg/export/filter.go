package export

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/models"
)

// 识别结果中常见的 HTML 数字实体，例如 &#39;
var numericEntity = regexp.MustCompile(`&#(\d+);`)

// SegmentFilter 判断识别片段的文本是否值得输出
type SegmentFilter struct {
	noise map[rune]struct{}
}

// NewSegmentFilter 使用给定的噪声标点集合创建过滤器，为空时使用默认集合。
// 空白和数字总是视为噪声。
func NewSegmentFilter(punctuation string) *SegmentFilter {
	if punctuation == "" {
		punctuation = models.DefaultNoisePunctuation
	}
	noise := make(map[rune]struct{}, len(punctuation))
	for _, r := range punctuation {
		noise[r] = struct{}{}
	}
	return &SegmentFilter{noise: noise}
}

// Clean 规范化片段文本。返回的 bool 为 false 表示该片段应被丢弃。
func (f *SegmentFilter) Clean(raw string) (string, bool) {
	text := NormalizeEntities(raw)
	text = strings.TrimSpace(text)
	if text == "" || f.IsNoise(text) {
		return "", false
	}
	return text, true
}

// IsNoise 文本完全由空白、数字和噪声标点组成时返回 true
func (f *SegmentFilter) IsNoise(text string) bool {
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsDigit(r) {
			continue
		}
		if _, ok := f.noise[r]; ok {
			continue
		}
		return false
	}
	return true
}

// NormalizeEntities 把 &#39; 还原为撇号，其余数字实体删除；
// 表示空白的实体（如 &#160;）替换为一个空格，避免相邻单词粘连。
func NormalizeEntities(text string) string {
	text = strings.ReplaceAll(text, "&#39;", "'")
	return numericEntity.ReplaceAllStringFunc(text, func(m string) string {
		code, err := strconv.Atoi(numericEntity.FindStringSubmatch(m)[1])
		if err == nil && code <= unicode.MaxRune && unicode.IsSpace(rune(code)) {
			return " "
		}
		return ""
	})
}
