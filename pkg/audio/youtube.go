package audio

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

// IsYouTubeURL 判断输入是否是YouTube链接
func IsYouTubeURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return youtubeHosts[strings.ToLower(u.Hostname())]
}

// YouTubeSource 通过yt-dlp下载YouTube音频
type YouTubeSource struct {
	Command string
	TempDir string
	Run     utils.CommandRunner
}

// NewYouTubeSource 创建YouTube来源，command为空时使用PATH中的yt-dlp
func NewYouTubeSource(command, tempDir string) *YouTubeSource {
	if command == "" {
		command = "yt-dlp"
	}
	return &YouTubeSource{
		Command: command,
		TempDir: tempDir,
		Run:     utils.RunCommand,
	}
}

// Acquire 下载音频到本次运行独立的临时目录，调用方负责Release
func (s *YouTubeSource) Acquire(ctx context.Context, input string) (*Audio, error) {
	link := CleanInput(input)
	if link == "" {
		return nil, utils.ValidationError("download", "链接不能为空", nil)
	}
	if !IsYouTubeURL(link) {
		return nil, utils.ValidationError("download", "不是有效的YouTube链接: "+link, nil)
	}

	dir, err := newRunDir(s.TempDir)
	if err != nil {
		return nil, err
	}
	audio := &Audio{Input: input, Source: models.SourceYouTube, tempDir: dir}

	utils.Info("正在下载音频: %s", link)
	_, err = s.Run(ctx, s.Command,
		"-x",
		"--audio-format", "mp3",
		"--no-playlist",
		"-o", filepath.Join(dir, "audio.%(ext)s"),
		link,
	)
	if err != nil {
		audio.Release()
		return nil, utils.CollaboratorError("download", "下载音频失败", err)
	}

	path, err := findDownloadedAudio(dir)
	if err != nil {
		audio.Release()
		return nil, utils.CollaboratorError("download", "下载完成但未找到音频文件", err)
	}

	audio.Path = path
	utils.Info("音频下载完成: %s", path)
	return audio, nil
}

// findDownloadedAudio 优先返回mp3，没有时返回目录中最大的文件
func findDownloadedAudio(dir string) (string, error) {
	if path := filepath.Join(dir, "audio.mp3"); utils.CheckFileExists(path) {
		return path, nil
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "audio.*"))
	if len(matches) == 0 {
		return "", os.ErrNotExist
	}
	sort.Slice(matches, func(i, j int) bool {
		infoI, errI := os.Stat(matches[i])
		infoJ, errJ := os.Stat(matches[j])
		if errI != nil || errJ != nil {
			return matches[i] < matches[j]
		}
		return infoI.Size() > infoJ.Size()
	})
	return matches[0], nil
}
