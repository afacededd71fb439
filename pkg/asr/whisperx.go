package asr

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// WhisperX 通过命令行调用WhisperX进行识别
type WhisperX struct {
	cfg     models.WhisperXConfig
	hfToken string
	tempDir string
	run     utils.CommandRunner
}

// WhisperXOption 修改WhisperX的可选参数
type WhisperXOption func(*WhisperX)

// WithWhisperXRunner 替换命令执行器
func WithWhisperXRunner(run utils.CommandRunner) WhisperXOption {
	return func(w *WhisperX) {
		if run != nil {
			w.run = run
		}
	}
}

// WithHFToken 设置Hugging Face令牌
func WithHFToken(token string) WhisperXOption {
	return func(w *WhisperX) {
		w.hfToken = token
	}
}

// WithTempDir 设置输出JSON的临时目录根路径
func WithTempDir(dir string) WhisperXOption {
	return func(w *WhisperX) {
		w.tempDir = dir
	}
}

// NewWhisperX 创建WhisperX识别器
func NewWhisperX(cfg models.WhisperXConfig, opts ...WhisperXOption) *WhisperX {
	if cfg.Command == "" {
		cfg.Command = "uvx"
	}
	if cfg.Model == "" {
		cfg.Model = "large-v2"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 16
	}
	w := &WhisperX{cfg: cfg, run: utils.RunCommand}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name 实现Recognizer接口
func (w *WhisperX) Name() string {
	return models.RecognizerWhisperX
}

// Available 检查启动命令是否在PATH中
func (w *WhisperX) Available() bool {
	return utils.CheckCommand(w.cfg.Command)
}

// Transcribe 实现Recognizer接口
func (w *WhisperX) Transcribe(ctx context.Context, audioPath string) ([]models.Segment, error) {
	outputDir, err := os.MkdirTemp(w.tempDir, "speaker-srt-whisperx-*")
	if err != nil {
		return nil, utils.IOError("transcribe", "创建WhisperX输出目录失败", err)
	}
	defer os.RemoveAll(outputDir)

	device := utils.ResolveDevice(ctx, w.run, w.cfg.Device)
	utils.Info("正在进行语音识别 (WhisperX %s, 设备: %s)...", w.cfg.Model, device)

	if _, err := w.run(ctx, w.cfg.Command, w.buildArgs(audioPath, outputDir, device)...); err != nil {
		return nil, utils.CollaboratorError("transcribe", "WhisperX识别失败", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	segments, err := LoadWhisperXSegments(filepath.Join(outputDir, base+".json"))
	if err != nil {
		return nil, utils.CollaboratorError("transcribe", "读取WhisperX输出失败", err)
	}

	utils.Info("语音识别完成，共 %d 段", len(segments))
	return segments, nil
}

// buildArgs 构造命令参数，uvx 启动时第一个参数是 whisperx
func (w *WhisperX) buildArgs(audioPath, outputDir, device string) []string {
	args := make([]string, 0, 20)
	if filepath.Base(w.cfg.Command) == "uvx" {
		args = append(args, "whisperx")
	}

	computeType := w.cfg.ComputeType
	if computeType == "" {
		computeType = "float32"
	}

	args = append(args,
		audioPath,
		"--model", w.cfg.Model,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--device", device,
		"--compute_type", computeType,
		"--batch_size", strconv.Itoa(w.cfg.BatchSize),
	)
	if w.cfg.Language != "" {
		args = append(args, "--language", w.cfg.Language)
	}
	if w.hfToken != "" {
		args = append(args, "--hf_token", w.hfToken)
	}
	return args
}

// whisperXPayload WhisperX JSON输出结构
type whisperXPayload struct {
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments"`
}

// LoadWhisperXSegments 读取WhisperX JSON输出，跳过空文本片段
func LoadWhisperXSegments(jsonPath string) ([]models.Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}

	segments := make([]models.Segment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, models.Segment{Start: seg.Start, End: seg.End, Text: text})
	}
	return segments, nil
}
