package models

import (
	"fmt"
	"math"
	"time"
)

// UnknownSpeaker 没有任何说话人区间与片段重叠时使用的标签
const UnknownSpeaker = "UNKNOWN"

// Segment 表示语音识别输出的一个带时间戳的文本片段
type Segment struct {
	Start float64 `json:"start"` // 开始时间（秒）
	End   float64 `json:"end"`   // 结束时间（秒）
	Text  string  `json:"text"`  // 识别出的文本内容
}

// Duration 返回片段时长（秒）
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Validate 检查片段时间范围是否合法
func (s Segment) Validate() error {
	if !isFinite(s.Start) || !isFinite(s.End) {
		return fmt.Errorf("时间戳必须是有限数值: %v --> %v", s.Start, s.End)
	}
	if s.Start < 0 {
		return fmt.Errorf("开始时间不能为负数: %.3f", s.Start)
	}
	if s.End <= s.Start {
		return fmt.Errorf("结束时间 %.3f 必须大于开始时间 %.3f", s.End, s.Start)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DiarizationSpan 表示说话人分离得到的一个说话人时间区间
type DiarizationSpan struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// LabeledSegment 是附带说话人标签的识别片段
type LabeledSegment struct {
	Segment
	Speaker string `json:"speaker"`
}

// SubtitleCue 表示SRT文件中的一条字幕
type SubtitleCue struct {
	Index   int
	Start   time.Duration
	End     time.Duration
	Content string
}
