package audio

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// DefaultVideoExtensions 需要先提取音频的容器格式
var DefaultVideoExtensions = []string{".mp4", ".mkv", ".mov", ".avi", ".flv", ".webm"}

// LocalSource 处理本地音频或视频文件
type LocalSource struct {
	Extractor       *AudioExtractor
	TempDir         string
	VideoExtensions []string
}

// NewLocalSource 创建本地文件来源
func NewLocalSource(extractor *AudioExtractor, tempDir string) *LocalSource {
	return &LocalSource{
		Extractor:       extractor,
		TempDir:         tempDir,
		VideoExtensions: DefaultVideoExtensions,
	}
}

// IsVideo 判断文件扩展名是否属于视频格式
func (s *LocalSource) IsVideo(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, v := range s.VideoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// Acquire 校验本地路径，视频文件会被提取为临时WAV
func (s *LocalSource) Acquire(ctx context.Context, input string) (*Audio, error) {
	path := CleanInput(input)
	if path == "" {
		return nil, utils.ValidationError("acquire", "路径不能为空", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, utils.ValidationError("acquire", "音频文件未找到: "+path, err)
	}
	if info.IsDir() {
		return nil, utils.ValidationError("acquire", "路径是目录而不是文件: "+path, nil)
	}

	audio := &Audio{Path: path, Input: input, Source: models.SourceLocal}
	if !s.IsVideo(path) || s.Extractor == nil {
		utils.Info("成功加载音频文件: %s", path)
		return audio, nil
	}

	dir, err := newRunDir(s.TempDir)
	if err != nil {
		return nil, err
	}
	audio.tempDir = dir

	extracted, err := s.Extractor.ExtractAudio(ctx, path, dir)
	if err != nil {
		audio.Release()
		return nil, err
	}
	audio.Path = extracted
	return audio, nil
}
