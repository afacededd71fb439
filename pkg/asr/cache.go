package asr

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// Cache 以音频CRC32为键缓存识别结果，每个结果一个JSON文件
type Cache struct {
	Dir string
}

// NewCache 创建缓存，dir为空时返回nil表示不使用缓存
func NewCache(dir string) *Cache {
	if dir == "" {
		return nil
	}
	return &Cache{Dir: dir}
}

// FileCRC32 计算文件的CRC32校验和（十六进制）
func FileCRC32(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := crc32.NewIEEE()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	sum := fmt.Sprintf("%08x", h.Sum32())
	utils.Debug("计算的CRC32校验和: %s", sum)
	return sum, nil
}

// Key 获取缓存键名，params是影响识别结果的参数（模型、语言等）
func (c *Cache) Key(service, audioPath string, params ...string) (string, error) {
	sum, err := FileCRC32(audioPath)
	if err != nil {
		return "", err
	}
	parts := []string{service}
	for _, p := range params {
		parts = append(parts, sanitizeKeyPart(p))
	}
	parts = append(parts, sum)
	return strings.Join(parts, "-"), nil
}

// sanitizeKeyPart 把不能出现在文件名中的字符替换为下划线，空值记为auto
func sanitizeKeyPart(part string) string {
	if part == "" {
		return "auto"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		}
		return '_'
	}, part)
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Load 从缓存加载识别结果
func (c *Cache) Load(key string) ([]models.Segment, bool) {
	if c == nil {
		return nil, false
	}

	cacheFilePath := c.path(key)
	if !utils.CheckFileExists(cacheFilePath) {
		utils.Debug("缓存文件不存在: %s", cacheFilePath)
		return nil, false
	}

	var segments []models.Segment
	if err := utils.ReadJSONFile(cacheFilePath, &segments); err != nil {
		utils.Warn("读取缓存失败: %s: %v", cacheFilePath, err)
		return nil, false
	}
	return segments, true
}

// Save 保存识别结果到缓存
func (c *Cache) Save(key string, segments []models.Segment) error {
	if c == nil {
		return nil
	}
	if segments == nil {
		segments = []models.Segment{}
	}
	return utils.SaveJSONFile(c.path(key), segments)
}
