package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// MediaInfo 存储媒体文件的详细信息
type MediaInfo struct {
	Path       string  // 文件路径
	Name       string  // 文件名
	Format     string  // 容器格式
	Duration   float64 // 时长(秒)
	SampleRate int     // 采样率(Hz)
	Channels   int     // 声道数
	Bitrate    int     // 比特率(kbps)
	Size       int64   // 文件大小(字节)
	HasVideo   bool    // 是否包含视频流
}

// ffprobe -of json 输出
type probeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
}

// MediaProcessor 通过ffprobe读取媒体信息
type MediaProcessor struct {
	FFprobe string
	Run     utils.CommandRunner
}

// NewMediaProcessor 创建新的媒体处理器，ffprobe为空时使用PATH中的ffprobe
func NewMediaProcessor(ffprobe string) *MediaProcessor {
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	return &MediaProcessor{
		FFprobe: ffprobe,
		Run:     utils.RunCommand,
	}
}

// GetMediaInfo 获取媒体文件信息，ffprobe无法读取或没有音频流时返回输入校验错误
func (p *MediaProcessor) GetMediaInfo(ctx context.Context, filePath string) (*MediaInfo, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, utils.ValidationError("probe", "文件不存在: "+filePath, err)
	}
	if stat.IsDir() {
		return nil, utils.ValidationError("probe", "路径是目录而不是文件: "+filePath, nil)
	}

	output, err := p.Run(ctx, p.FFprobe,
		"-v", "error",
		"-show_entries", "format=format_name,duration,size,bit_rate:stream=codec_type,sample_rate,channels",
		"-of", "json",
		filePath,
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, utils.CollaboratorError("probe", "读取媒体信息被中断", ctx.Err())
		}
		return nil, utils.ValidationError("probe", "不是可播放的音频文件: "+filePath, err)
	}

	info, err := parseProbeOutput(output)
	if err != nil {
		return nil, utils.ValidationError("probe", "无法解析媒体信息: "+filePath, err)
	}

	info.Path = filePath
	info.Name = filepath.Base(filePath)
	if info.Size == 0 {
		info.Size = stat.Size()
	}

	utils.Debug("媒体信息: %s 时长=%.2fs 采样率=%d 声道=%d", info.Name, info.Duration, info.SampleRate, info.Channels)
	return info, nil
}

func parseProbeOutput(output []byte) (*MediaInfo, error) {
	var probe probeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, err
	}

	info := &MediaInfo{}
	hasAudio := false
	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "audio":
			if !hasAudio {
				hasAudio = true
				info.SampleRate, _ = strconv.Atoi(stream.SampleRate)
				info.Channels = stream.Channels
			}
		case "video":
			info.HasVideo = true
		}
	}
	if !hasAudio {
		return nil, fmt.Errorf("没有音频流")
	}

	// format_name 可能是逗号分隔的多个别名
	info.Format = strings.Split(probe.Format.FormatName, ",")[0]
	if d, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64); err == nil {
		info.Duration = d
	}
	if s, err := strconv.ParseInt(strings.TrimSpace(probe.Format.Size), 10, 64); err == nil {
		info.Size = s
	}
	// 比特率可能是 N/A
	if b, err := strconv.Atoi(strings.TrimSpace(probe.Format.BitRate)); err == nil {
		info.Bitrate = b / 1000
	}

	return info, nil
}
