package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// 识别服务名称
const (
	RecognizerWhisperX = "whisperx"
	RecognizerKuaishou = "kuaishou"
	RecognizerAuto     = "auto"
)

// 计算设备
const (
	DeviceAuto = "auto"
	DeviceCPU  = "cpu"
	DeviceCUDA = "cuda"
)

// WhisperXConfig WhisperX命令行调用参数
type WhisperXConfig struct {
	Command     string `json:"command" yaml:"command"`           // 启动命令，"uvx" 时通过 uvx 运行 whisperx
	Model       string `json:"model" yaml:"model"`               // 模型名称
	Device      string `json:"device" yaml:"device"`             // auto/cpu/cuda
	ComputeType string `json:"compute_type" yaml:"compute_type"` // 计算精度
	BatchSize   int    `json:"batch_size" yaml:"batch_size"`     // 批大小
	Language    string `json:"language" yaml:"language"`         // 语言，空表示自动检测
}

// DiarizeConfig 说话人分离脚本参数
type DiarizeConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"` // 是否进行说话人分离
	Python  string `json:"python" yaml:"python"`   // python解释器
	Script  string `json:"script" yaml:"script"`   // pyannote分离脚本路径
	Device  string `json:"device" yaml:"device"`   // auto/cpu/cuda
}

// Config 表示应用程序的配置
type Config struct {
	OutputPath      string         `json:"output_path" yaml:"output_path"`             // 字幕输出路径
	TempDir         string         `json:"temp_dir" yaml:"temp_dir"`                   // 临时目录，空表示系统临时目录
	Recognizer      string         `json:"recognizer" yaml:"recognizer"`               // 识别服务 (whisperx, kuaishou, auto)
	WhisperX        WhisperXConfig `json:"whisperx" yaml:"whisperx"`                   // WhisperX参数
	KuaishouURL     string         `json:"kuaishou_url" yaml:"kuaishou_url"`           // 快手ASR接口地址
	Diarize         DiarizeConfig  `json:"diarize" yaml:"diarize"`                     // 说话人分离参数
	HFTokenEnv      string         `json:"hf_token_env" yaml:"hf_token_env"`           // Hugging Face令牌所在环境变量
	UseCache        bool           `json:"use_cache" yaml:"use_cache"`                 // 是否缓存识别结果
	CacheDir        string         `json:"cache_dir" yaml:"cache_dir"`                 // 缓存目录
	ExportJSON      bool           `json:"export_json" yaml:"export_json"`             // 是否额外导出JSON
	ShowProgress    bool           `json:"show_progress" yaml:"show_progress"`         // 显示进度条
	LogLevel        string         `json:"log_level" yaml:"log_level"`                 // 日志级别
	LogFile         string         `json:"log_file" yaml:"log_file"`                   // 日志文件
	WatchExtensions []string       `json:"watch_extensions" yaml:"watch_extensions"`   // 监听模式处理的扩展名
	WatchDebounceMs int            `json:"watch_debounce_ms" yaml:"watch_debounce_ms"` // 监听模式去抖时间（毫秒）
	YtDlpCommand    string         `json:"ytdlp_command" yaml:"ytdlp_command"`         // yt-dlp命令
	FFmpegCommand   string         `json:"ffmpeg_command" yaml:"ffmpeg_command"`       // ffmpeg命令
	FFprobeCommand  string         `json:"ffprobe_command" yaml:"ffprobe_command"`     // ffprobe命令
}

// ConfigValidationError 表示配置验证错误
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("配置验证错误: %s - %s", e.Field, e.Message)
}

// NewDefaultConfig 创建默认配置
func NewDefaultConfig() *Config {
	return &Config{
		OutputPath: "output.srt",
		TempDir:    "",
		Recognizer: RecognizerWhisperX,
		WhisperX: WhisperXConfig{
			Command:     "uvx",
			Model:       "large-v2",
			Device:      DeviceAuto,
			ComputeType: "float32",
			BatchSize:   16,
			Language:    "",
		},
		KuaishouURL: "https://ai.kuaishou.com/api/effects/subtitle_generate",
		Diarize: DiarizeConfig{
			Enabled: true,
			Python:  "python3",
			Script:  "scripts/pyannote_diarize.py",
			Device:  DeviceAuto,
		},
		HFTokenEnv:      "HUGGINGFACE_TOKEN",
		UseCache:        false,
		CacheDir:        "./cache",
		ExportJSON:      false,
		ShowProgress:    true,
		LogLevel:        "info",
		LogFile:         "",
		WatchExtensions: []string{".mp3", ".wav", ".m4a", ".flac", ".ogg", ".aac", ".mp4", ".mkv", ".mov"},
		WatchDebounceMs: 3000,
		YtDlpCommand:    "yt-dlp",
		FFmpegCommand:   "ffmpeg",
		FFprobeCommand:  "ffprobe",
	}
}

// Validate 验证配置是否有效
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputPath) == "" {
		return &ConfigValidationError{"OutputPath", "不能为空"}
	}

	if err := ensureDirExists(c.TempDir); err != nil {
		return &ConfigValidationError{"TempDir", err.Error()}
	}

	switch c.Recognizer {
	case RecognizerWhisperX, RecognizerKuaishou, RecognizerAuto:
	default:
		return &ConfigValidationError{"Recognizer", "必须是 whisperx、kuaishou 或 auto"}
	}

	if c.WhisperX.BatchSize < 1 || c.WhisperX.BatchSize > 64 {
		return &ConfigValidationError{"WhisperX.BatchSize", "必须在1-64之间"}
	}

	if !validDevice(c.WhisperX.Device) {
		return &ConfigValidationError{"WhisperX.Device", "必须是 auto、cpu 或 cuda"}
	}

	if c.Diarize.Enabled {
		if strings.TrimSpace(c.Diarize.Script) == "" {
			return &ConfigValidationError{"Diarize.Script", "启用说话人分离时不能为空"}
		}
		if !validDevice(c.Diarize.Device) {
			return &ConfigValidationError{"Diarize.Device", "必须是 auto、cpu 或 cuda"}
		}
	}

	if c.UseCache && strings.TrimSpace(c.CacheDir) == "" {
		return &ConfigValidationError{"CacheDir", "启用缓存时不能为空"}
	}

	if c.WatchDebounceMs < 0 || c.WatchDebounceMs > 60000 {
		return &ConfigValidationError{"WatchDebounceMs", "必须在0-60000毫秒之间"}
	}

	return nil
}

func validDevice(device string) bool {
	switch device {
	case DeviceAuto, DeviceCPU, DeviceCUDA:
		return true
	}
	return false
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFromFile 从文件加载配置，按扩展名选择JSON或YAML
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("读取配置文件失败: %v", err)
		return err
	}

	if isYAMLPath(path) {
		err = yaml.Unmarshal(data, c)
	} else {
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		logrus.Errorf("解析配置文件失败: %v", err)
		return err
	}

	if err := c.Validate(); err != nil {
		logrus.Errorf("配置验证失败: %v", err)
		return err
	}

	return nil
}

// SaveToFile 保存配置到文件
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logrus.Errorf("创建目录失败: %v", err)
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAMLPath(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		logrus.Errorf("序列化配置失败: %v", err)
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		logrus.Errorf("写入配置文件失败: %v", err)
		return err
	}

	return nil
}

// Update 批量更新配置
func (c *Config) Update(updates map[string]interface{}) error {
	// 保存当前配置用于回滚
	tempConfig := *c

	updateBytes, err := json.Marshal(updates)
	if err != nil {
		logrus.Errorf("序列化更新数据失败: %v", err)
		return err
	}

	if err := json.Unmarshal(updateBytes, c); err != nil {
		*c = tempConfig
		logrus.Errorf("应用配置更新失败: %v", err)
		return err
	}

	if err := c.Validate(); err != nil {
		*c = tempConfig
		logrus.Errorf("配置验证失败: %v", err)
		return err
	}

	return nil
}

// Reset 重置为默认配置
func (c *Config) Reset() {
	*c = *NewDefaultConfig()
}

// HFToken 从配置的环境变量读取Hugging Face令牌，兼容 HF_TOKEN
func (c *Config) HFToken() string {
	if c.HFTokenEnv != "" {
		if token := strings.TrimSpace(os.Getenv(c.HFTokenEnv)); token != "" {
			return token
		}
	}
	return strings.TrimSpace(os.Getenv("HF_TOKEN"))
}

// PrintConfig 打印当前配置
func (c *Config) PrintConfig() {
	logrus.Info("当前配置:")
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		logrus.Errorf("序列化配置失败: %v", err)
		return
	}
	logrus.Info(string(bytes))
}

// 确保目录存在，如果不存在则创建
func ensureDirExists(path string) error {
	if path == "" {
		return nil // 空路径视为可选
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}

	return nil
}
