package models

// SourceKind 音频来源类型
type SourceKind string

const (
	SourceLocal   SourceKind = "local"
	SourceYouTube SourceKind = "youtube"
)

// Result 单次处理的结果统计信息
type Result struct {
	RunID         string             `json:"run_id"`          // 本次运行ID
	Input         string             `json:"input"`           // 用户输入的路径或URL
	Source        SourceKind         `json:"source"`          // 来源类型
	AudioPath     string             `json:"audio_path"`      // 实际处理的音频路径
	Recognizer    string             `json:"recognizer"`      // 使用的识别服务
	OutputFiles   map[string]string  `json:"output_files"`    // 输出文件路径
	SegmentCount  int                `json:"segment_count"`   // 识别的文本段数
	SpeakerCounts map[string]int     `json:"speaker_counts"`  // 每个说话人的片段数
	SpeakerTime   map[string]float64 `json:"speaker_time"`    // 每个说话人的发言时长（秒）
	DurationMs    int64              `json:"duration_ms"`     // 音频时长（毫秒）
	ProcessTimeMs int64              `json:"process_time_ms"` // 处理时间（毫秒）
}

// NewResult 创建空的结果统计
func NewResult(runID, input string, source SourceKind) *Result {
	return &Result{
		RunID:         runID,
		Input:         input,
		Source:        source,
		OutputFiles:   make(map[string]string),
		SpeakerCounts: make(map[string]int),
		SpeakerTime:   make(map[string]float64),
	}
}
