package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// TranscriptSegment 表示转录结果中的一个片段
type TranscriptSegment struct {
	Index   int     `json:"index"`   // 对应字幕序号
	Start   float64 `json:"start"`   // 开始时间（秒）
	End     float64 `json:"end"`     // 结束时间（秒）
	Speaker string  `json:"speaker"` // 说话人标签
	Text    string  `json:"text"`    // 该段文字
}

// TranscriptResult 表示整个转录结果
type TranscriptResult struct {
	Language string              `json:"language,omitempty"` // 识别语言（如 "zh"、"en"）
	FullText string              `json:"full_text"`          // 完整合并后的文本
	Speakers []string            `json:"speakers"`           // 出现过的说话人，按字母序
	Segments []TranscriptSegment `json:"segments"`           // 分段结构
}

// JSONExporter 负责将带说话人标签的片段导出为JSON文件
type JSONExporter struct {
	Language string
}

// NewJSONExporter 创建一个新的JSON导出器
func NewJSONExporter(language string) *JSONExporter {
	return &JSONExporter{Language: language}
}

// GenerateJSONContent 根据片段生成TranscriptResult结构
func (e *JSONExporter) GenerateJSONContent(segments []models.LabeledSegment) TranscriptResult {
	result := TranscriptResult{
		Language: e.Language,
		Speakers: make([]string, 0),
		Segments: make([]TranscriptSegment, 0, len(segments)),
	}

	seen := make(map[string]bool)
	var fullText strings.Builder

	for i, seg := range segments {
		text := normalizeText(seg.Text)
		if text != "" {
			if fullText.Len() > 0 {
				fullText.WriteString(" ")
			}
			fullText.WriteString(text)
		}

		if !seen[seg.Speaker] {
			seen[seg.Speaker] = true
			result.Speakers = append(result.Speakers, seg.Speaker)
		}

		result.Segments = append(result.Segments, TranscriptSegment{
			Index:   i + 1,
			Start:   seg.Start,
			End:     seg.End,
			Speaker: seg.Speaker,
			Text:    text,
		})
	}

	sort.Strings(result.Speakers)
	result.FullText = fullText.String()
	return result
}

// ExportJSON 导出JSON文件，已存在的文件会被覆盖
func (e *JSONExporter) ExportJSON(segments []models.LabeledSegment, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return utils.IOError("export", "创建输出目录失败: "+dir, err)
		}
	}

	jsonData, err := json.MarshalIndent(e.GenerateJSONContent(segments), "", "  ")
	if err != nil {
		return utils.IOError("export", "JSON编码失败", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return utils.IOError("export", "写入JSON文件失败: "+outputPath, err)
	}

	utils.Info("已导出JSON文件: %s", outputPath)
	return nil
}
