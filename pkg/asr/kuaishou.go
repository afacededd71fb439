package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// DefaultKuaishouURL 快手字幕生成接口
const DefaultKuaishouURL = "https://ai.kuaishou.com/api/effects/subtitle_generate"

// KuaiShouASR 快手语音识别实现
type KuaiShouASR struct {
	URL    string
	Client *http.Client
}

// NewKuaiShouASR 创建快手ASR实例
func NewKuaiShouASR(url string) *KuaiShouASR {
	if url == "" {
		url = DefaultKuaishouURL
	}
	return &KuaiShouASR{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Minute},
	}
}

// KuaiShouResponse 响应结构
type KuaiShouResponse struct {
	Data struct {
		Text []struct {
			Text      string  `json:"text"`
			StartTime float64 `json:"start_time"`
			EndTime   float64 `json:"end_time"`
		} `json:"text"`
	} `json:"data"`
}

// Name 实现Recognizer接口
func (k *KuaiShouASR) Name() string {
	return models.RecognizerKuaishou
}

// Transcribe 实现Recognizer接口
func (k *KuaiShouASR) Transcribe(ctx context.Context, audioPath string) ([]models.Segment, error) {
	fileBinary, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, utils.IOError("transcribe", "读取音频文件失败: "+audioPath, err)
	}

	utils.Info("正在进行语音识别 (快手ASR)...")
	result, err := k.submit(ctx, filepath.Base(audioPath), fileBinary)
	if err != nil {
		return nil, utils.CollaboratorError("transcribe", "快手ASR请求失败", err)
	}

	segments := k.makeSegments(result)
	utils.Info("语音识别完成，共 %d 段", len(segments))
	return segments, nil
}

// submit 提交识别请求
func (k *KuaiShouASR) submit(ctx context.Context, filename string, fileBinary []byte) (*KuaiShouResponse, error) {
	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)

	if err := writer.WriteField("typeId", "1"); err != nil {
		return nil, fmt.Errorf("写入表单字段失败: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("创建表单文件失败: %w", err)
	}
	if _, err := part.Write(fileBinary); err != nil {
		return nil, fmt.Errorf("写入文件数据失败: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("关闭表单写入器失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.URL, &requestBody)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := k.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result KuaiShouResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("解析响应JSON失败: %w", err)
	}
	return &result, nil
}

// makeSegments 处理识别结果
func (k *KuaiShouASR) makeSegments(resp *KuaiShouResponse) []models.Segment {
	segments := make([]models.Segment, 0, len(resp.Data.Text))
	for _, item := range resp.Data.Text {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		segments = append(segments, models.Segment{
			Text:  text,
			Start: item.StartTime,
			End:   item.EndTime,
		})
	}
	return segments
}
