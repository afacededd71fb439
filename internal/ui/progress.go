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

	term *TerminalManager
}

// NewProgressBar 创建新的进度条，term为nil时不绘制
func NewProgressBar(term *TerminalManager, total int, prefix string, suffix string) *ProgressBar {
	if total <= 0 {
		total = 1
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
		term:       term,
	}
}

// Update 更新进度
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
	p.draw()
}

// Increment 增加进度
func (p *ProgressBar) Increment(suffix string) {
	p.Update(p.Current+1, suffix)
}

// Complete 完成进度条
func (p *ProgressBar) Complete(suffix string) {
	p.Update(p.Total, suffix)
	if p.term != nil {
		p.term.EndProgress()
	}
}

func (p *ProgressBar) draw() {
	if p.term == nil {
		return
	}
	p.term.UpdateProgress(p.Line())
}

// Line 返回包含耗时和剩余时间估计的进度行
func (p *ProgressBar) Line() string {
	percent := float64(p.Current) / float64(p.Total)
	elapsed := p.LastUpdate.Sub(p.StartTime)

	// 估计剩余时间
	var remaining time.Duration
	if p.Current > 0 {
		remaining = time.Duration(float64(elapsed) / percent * (1 - percent))
	}

	return fmt.Sprintf("%s %s %3.0f%% | %d/%d | %s<%s | %s",
		p.Prefix, p.bar(), percent*100, p.Current, p.Total,
		formatDuration(elapsed), formatDuration(remaining), p.Suffix)
}

// String 返回进度条的字符串表示
func (p *ProgressBar) String() string {
	percent := float64(p.Current) / float64(p.Total) * 100
	return fmt.Sprintf("%s %s %3.0f%% | %d/%d", p.Prefix, p.bar(), percent, p.Current, p.Total)
}

func (p *ProgressBar) bar() string {
	filled := int(float64(p.Current) / float64(p.Total) * float64(p.Width))
	if filled > p.Width {
		filled = p.Width
	}
	return "[" + strings.Repeat(p.FillChar, filled) + strings.Repeat(p.EmptyChar, p.Width-filled) + "]"
}

// 格式化持续时间为 MM:SS 格式
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
