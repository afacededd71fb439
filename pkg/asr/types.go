// Package asr 封装语音识别服务，输出带时间戳的文本片段。
package asr

import (
	"context"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
)

// Recognizer 定义了语音识别服务的接口
type Recognizer interface {
	// Name 返回服务名称，用于日志和缓存键
	Name() string
	// Transcribe 识别音频并按时间顺序返回文本片段
	Transcribe(ctx context.Context, audioPath string) ([]models.Segment, error)
}
