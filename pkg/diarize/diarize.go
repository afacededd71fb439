// Package diarize 调用外部说话人分离脚本，返回按开始时间排序的说话人区间。
package diarize

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// PythonEnv 覆盖配置中python解释器的环境变量
const PythonEnv = "SPEAKER_SRT_PYTHON"

// Diarizer 定义了说话人分离服务的接口
type Diarizer interface {
	// Diarize 返回音频中的说话人区间，duration>0 时区间结束时间不会超过duration
	Diarize(ctx context.Context, audioPath string, duration float64) ([]models.DiarizationSpan, error)
}

// PyannoteDiarizer 通过python脚本运行pyannote说话人分离
type PyannoteDiarizer struct {
	Python  string
	Script  string
	Device  string
	HFToken string
	Run     utils.EnvCommandRunner
}

// NewPyannoteDiarizer 按配置创建分离器，SPEAKER_SRT_PYTHON 优先于配置中的解释器
func NewPyannoteDiarizer(cfg models.DiarizeConfig, hfToken string) *PyannoteDiarizer {
	python := cfg.Python
	if env := strings.TrimSpace(os.Getenv(PythonEnv)); env != "" {
		python = env
	}
	if python == "" {
		python = "python3"
	}
	return &PyannoteDiarizer{
		Python:  python,
		Script:  cfg.Script,
		Device:  cfg.Device,
		HFToken: hfToken,
		Run:     utils.RunCommandWithEnv,
	}
}

// scriptOutput 脚本标准输出的JSON结构
type scriptOutput struct {
	Segments []models.DiarizationSpan `json:"segments"`
}

// Diarize 实现Diarizer接口
func (d *PyannoteDiarizer) Diarize(ctx context.Context, audioPath string, duration float64) ([]models.DiarizationSpan, error) {
	if !utils.CheckFileExists(d.Script) {
		return nil, utils.CollaboratorError("diarize", "说话人分离脚本不存在: "+d.Script, nil)
	}

	device := utils.ResolveDevice(ctx, func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return d.Run(ctx, nil, name, args...)
	}, d.Device)

	var env []string
	if d.HFToken == "" {
		utils.Warn("未设置 HUGGINGFACE_TOKEN，将以匿名方式加载说话人分离模型")
	} else {
		env = append(env, "HUGGINGFACE_TOKEN="+d.HFToken)
	}

	utils.Info("正在进行说话人分离 (设备: %s)...", device)
	output, err := d.Run(ctx, env, d.Python, d.Script, "--input", audioPath, "--device", device)
	if err != nil {
		return nil, utils.CollaboratorError("diarize", "说话人分离失败", err)
	}

	spans, err := ParseSpans(output)
	if err != nil {
		return nil, utils.CollaboratorError("diarize", "解析说话人分离结果失败", err)
	}
	if duration > 0 {
		spans = ClampSpans(spans, duration)
	}

	utils.Info("说话人分离完成，共 %d 个区间", len(spans))
	return spans, nil
}

// ParseSpans 解析脚本输出并按开始时间稳定排序
func ParseSpans(output []byte) ([]models.DiarizationSpan, error) {
	var out scriptOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return nil, fmt.Errorf("invalid diarization json: %w", err)
	}

	spans := make([]models.DiarizationSpan, 0, len(out.Segments))
	for _, span := range out.Segments {
		span.Speaker = strings.TrimSpace(span.Speaker)
		if span.Speaker == "" {
			span.Speaker = models.UnknownSpeaker
		}
		spans = append(spans, span)
	}
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Start < spans[j].Start
	})
	return spans, nil
}

// ClampSpans 把超出音频时长的区间截断到duration，完全超出的区间被丢弃
func ClampSpans(spans []models.DiarizationSpan, duration float64) []models.DiarizationSpan {
	clamped := make([]models.DiarizationSpan, 0, len(spans))
	for _, span := range spans {
		if span.Start >= duration {
			continue
		}
		if span.End > duration {
			span.End = duration
		}
		clamped = append(clamped, span)
	}
	return clamped
}
