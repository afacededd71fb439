package ui

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/export"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

func newTable(headers ...interface{}) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row(headers))
	return tw
}

// RenderSpeakerTable 渲染说话人统计表，按发言时长降序
func RenderSpeakerTable(result *models.Result) string {
	speakers := make([]string, 0, len(result.SpeakerCounts))
	for speaker := range result.SpeakerCounts {
		speakers = append(speakers, speaker)
	}
	sort.Slice(speakers, func(i, j int) bool {
		ti, tj := result.SpeakerTime[speakers[i]], result.SpeakerTime[speakers[j]]
		if ti != tj {
			return ti > tj
		}
		return speakers[i] < speakers[j]
	})

	tw := newTable("说话人", "片段数", "发言时长")
	for _, speaker := range speakers {
		tw.AppendRow(table.Row{
			speaker,
			result.SpeakerCounts[speaker],
			utils.FormatChineseTimeDuration(result.SpeakerTime[speaker]),
		})
	}
	tw.AppendFooter(table.Row{"合计", result.SegmentCount, ""})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	return tw.Render()
}

// RenderCueTable 渲染字幕条目预览，limit<=0 表示全部
func RenderCueTable(cues []models.SubtitleCue, limit int) string {
	tw := newTable("#", "开始", "结束", "内容")
	for i, cue := range cues {
		if limit > 0 && i >= limit {
			tw.AppendRow(table.Row{"…", "", "", fmt.Sprintf("还有 %d 条", len(cues)-limit)})
			break
		}
		tw.AppendRow(table.Row{
			strconv.Itoa(cue.Index),
			export.FormatSRTTime(cue.Start),
			export.FormatSRTTime(cue.End),
			cue.Content,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, WidthMax: 60},
	})
	return tw.Render()
}
