package audio

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// NormalizedName 标准化后音频的文件名
const NormalizedName = "audio.wav"

// AudioExtractor 使用ffmpeg提取并标准化音频
type AudioExtractor struct {
	FFmpeg string
	Run    utils.CommandRunner
}

// NewAudioExtractor 创建新的音频提取器，ffmpeg为空时使用PATH中的ffmpeg
func NewAudioExtractor(ffmpeg string) *AudioExtractor {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return &AudioExtractor{
		FFmpeg: ffmpeg,
		Run:    utils.RunCommand,
	}
}

// ExtractAudio 提取音频轨道并转换为16kHz单声道WAV，输出到outputDir
func (e *AudioExtractor) ExtractAudio(ctx context.Context, inputPath, outputDir string) (string, error) {
	audioPath := filepath.Join(outputDir, NormalizedName)

	utils.Info("正在提取音频: %s", filepath.Base(inputPath))
	_, err := e.Run(ctx, e.FFmpeg,
		"-y", // 覆盖已存在的文件
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		audioPath,
	)
	if err != nil {
		return "", utils.CollaboratorError("extract", "音频提取失败: "+inputPath, err)
	}

	// 检查文件是否成功生成
	if _, err := os.Stat(audioPath); err != nil {
		return "", utils.CollaboratorError("extract", "提取的音频文件不存在: "+audioPath, err)
	}

	utils.Debug("音频提取成功: %s", audioPath)
	return audioPath, nil
}
