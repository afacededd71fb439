package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// SpeakerPrefix 字幕内容中说话人标签前的固定前缀
const SpeakerPrefix = "说话人"

// SRTExporter 负责将带说话人标签的片段导出为SRT字幕文件
type SRTExporter struct{}

// NewSRTExporter 创建一个新的SRT导出器
func NewSRTExporter() *SRTExporter {
	return &SRTExporter{}
}

// FormatSRTTime 将时长格式化为SRT时间格式 (HH:MM:SS,mmm)
func FormatSRTTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Millisecond)
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	secs := d / time.Second
	d -= secs * time.Second
	millis := d / time.Millisecond

	return fmt.Sprintf("%02d:%02d:%02d,%03d", int64(hours), int64(minutes), int64(secs), int64(millis))
}

// FormatCueContent 生成 "说话人 <标签>：<文本>" 形式的字幕内容
func FormatCueContent(speaker, text string) string {
	if speaker == "" {
		speaker = models.UnknownSpeaker
	}
	return fmt.Sprintf("%s %s：%s", SpeakerPrefix, speaker, normalizeText(text))
}

// normalizeText 去掉首尾空白和空行，空行会提前结束SRT字幕块
func normalizeText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// BuildCues 按输入顺序生成从1开始连续编号的字幕条目
func BuildCues(segments []models.LabeledSegment) []models.SubtitleCue {
	cues := make([]models.SubtitleCue, 0, len(segments))
	for i, seg := range segments {
		start := utils.SecondsToDuration(seg.Start)
		end := utils.SecondsToDuration(seg.End)
		// 不足1毫秒的片段取整后会变成零时长，至少保留1毫秒
		if end <= start {
			end = start + time.Millisecond
		}
		cues = append(cues, models.SubtitleCue{
			Index:   i + 1,
			Start:   start,
			End:     end,
			Content: FormatCueContent(seg.Speaker, seg.Text),
		})
	}
	return cues
}

// GenerateSRTContent 生成SRT格式内容，没有字幕时返回空字符串
func GenerateSRTContent(cues []models.SubtitleCue) string {
	var sb strings.Builder
	for _, cue := range cues {
		sb.WriteString(strconv.Itoa(cue.Index))
		sb.WriteString("\n")
		sb.WriteString(FormatSRTTime(cue.Start))
		sb.WriteString(" --> ")
		sb.WriteString(FormatSRTTime(cue.End))
		sb.WriteString("\n")
		sb.WriteString(cue.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// WriteSRT 将字幕写入指定路径，已存在的文件会被覆盖
func (e *SRTExporter) WriteSRT(cues []models.SubtitleCue, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return utils.IOError("export", "创建输出目录失败: "+dir, err)
		}
	}

	if err := os.WriteFile(outputPath, []byte(GenerateSRTContent(cues)), 0644); err != nil {
		return utils.IOError("export", "写入SRT文件失败: "+outputPath, err)
	}
	return nil
}

// ExportSRT 生成字幕并写入文件，返回写入的字幕条数
func (e *SRTExporter) ExportSRT(segments []models.LabeledSegment, outputPath string) (int, error) {
	cues := BuildCues(segments)
	if err := e.WriteSRT(cues, outputPath); err != nil {
		return 0, err
	}

	utils.Info("已导出SRT字幕: %s (%d 条)", outputPath, len(cues))
	return len(cues), nil
}
