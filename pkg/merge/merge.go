// Package merge 根据时间重叠为识别片段分配说话人标签。
package merge

import (
	"fmt"
	"math"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// tieEpsilon 重叠时长差在此范围内视为相同，吸收浮点误差
const tieEpsilon = 1e-9

// Overlap 返回两个时间区间的重叠长度（秒），不重叠时为0
func Overlap(aStart, aEnd, bStart, bEnd float64) float64 {
	return math.Max(0, math.Min(aEnd, bEnd)-math.Max(aStart, bStart))
}

// AssignSpeakers 为每个片段选择重叠时间最长的说话人区间。
//
// 重叠相同时选择开始时间更早的区间，开始时间也相同时选择输入中靠前的区间。
// 没有任何区间重叠的片段标记为 models.UnknownSpeaker。
// 输出与输入长度、顺序一致；结束时间不大于开始时间的片段返回校验错误。
func AssignSpeakers(segments []models.Segment, spans []models.DiarizationSpan) ([]models.LabeledSegment, error) {
	labeled := make([]models.LabeledSegment, 0, len(segments))

	for i, seg := range segments {
		if err := seg.Validate(); err != nil {
			return nil, utils.ValidationError("merge", fmt.Sprintf("第 %d 个片段时间非法", i+1), err)
		}

		speaker := models.UnknownSpeaker
		best := 0.0
		bestStart := math.Inf(1)

		for _, span := range spans {
			if span.End <= span.Start {
				continue
			}
			ov := Overlap(seg.Start, seg.End, span.Start, span.End)
			if ov <= 0 {
				continue
			}
			if ov > best+tieEpsilon || (math.Abs(ov-best) <= tieEpsilon && span.Start < bestStart) {
				best = ov
				bestStart = span.Start
				speaker = span.Speaker
			}
		}

		labeled = append(labeled, models.LabeledSegment{
			Segment: seg,
			Speaker: speaker,
		})
	}

	return labeled, nil
}

// SpeakerStats 统计每个说话人的片段数和发言时长（秒）
func SpeakerStats(labeled []models.LabeledSegment) (map[string]int, map[string]float64) {
	counts := make(map[string]int)
	durations := make(map[string]float64)
	for _, seg := range labeled {
		counts[seg.Speaker]++
		durations[seg.Speaker] += seg.Duration()
	}
	return counts, durations
}
