package ui

import (
	"fmt"
	"strings"
	"time"
)

// ProgressBar 进度条结构
type ProgressBar struct {
	Total      int       // 总步数
	Current    int       // 当前进度
	Prefix     string    // 前缀
	Suffix     string    // 后缀
	Width      int       // 进度条宽度
	FillChar   string    // 填充字符
	EmptyChar  string    // 空白字符
	StartTime  time.Time // 开始时间
	LastUpdate time.Time // 上次更新时间

	render func(line string)
}

// NewProgressBar 创建新的进度条，render 为空时不输出
func NewProgressBar(total int, prefix string, suffix string, render func(line string)) *ProgressBar {
	if total < 1 {
		total = 1
	}
	if render == nil {
		render = func(string) {}
	}
	return &ProgressBar{
		Total:      total,
		Prefix:     prefix,
		Suffix:     suffix,
		Width:      30,
		FillChar:   "█",
		EmptyChar:  "░",
		StartTime:  time.Now(),
		LastUpdate: time.Now(),
		render:     render,
	}
}

// Update 更新进度，负值被忽略，超过总数时按总数处理
func (p *ProgressBar) Update(current int, suffix string) {
	if current < 0 {
		return
	}
	if current > p.Total {
		current = p.Total
	}

	p.Current = current
	if suffix != "" {
		p.Suffix = suffix
	}
	p.LastUpdate = time.Now()
	p.render(p.String())
}

// Complete 完成进度条
func (p *ProgressBar) Complete(suffix string) {
	p.Update(p.Total, suffix)
}

// Percent 返回完成百分比
func (p *ProgressBar) Percent() float64 {
	return float64(p.Current) / float64(p.Total) * 100
}

// String 返回进度条的字符串表示
func (p *ProgressBar) String() string {
	percent := float64(p.Current) / float64(p.Total)
	filled := int(percent * float64(p.Width))
	if filled > p.Width {
		filled = p.Width
	}
	bar := strings.Repeat(p.FillChar, filled) + strings.Repeat(p.EmptyChar, p.Width-filled)

	elapsed := time.Since(p.StartTime)
	var remaining time.Duration
	if p.Current > 0 {
		remaining = time.Duration(float64(elapsed) / percent * (1 - percent))
	}

	line := fmt.Sprintf("%s [%s] %3.0f%% | %s<%s", p.Prefix, bar, percent*100,
		formatDuration(elapsed), formatDuration(remaining))
	if p.Suffix != "" {
		line += " | " + p.Suffix
	}
	return line
}

// 格式化持续时间为 MM:SS 格式
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
