package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// MediaFile 表示一个待生成字幕的媒体文件
type MediaFile struct {
	Path        string    // 文件路径
	Name        string    // 文件名
	Ext         string    // 文件扩展名
	Size        int64     // 文件大小（字节）
	ModTime     time.Time // 修改时间
	IsVideo     bool      // 是否为视频文件
	HasSubtitle bool      // 同目录下是否已有不早于媒体文件的字幕
}

// MediaScanner 用于扫描媒体文件
type MediaScanner struct {
	Extensions      []string
	VideoExtensions []string
}

// NewMediaScanner 创建新的媒体扫描器，扩展名统一转为小写并带点
func NewMediaScanner(extensions, videoExtensions []string) *MediaScanner {
	return &MediaScanner{
		Extensions:      normalizeExts(extensions),
		VideoExtensions: normalizeExts(videoExtensions),
	}
}

func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

func contains(list []string, ext string) bool {
	for _, v := range list {
		if v == ext {
			return true
		}
	}
	return false
}

// Match 判断文件扩展名是否在扫描范围内，隐藏文件不匹配
func (s *MediaScanner) Match(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return contains(s.Extensions, strings.ToLower(filepath.Ext(path)))
}

// SubtitlePath 返回媒体文件对应的字幕路径
func SubtitlePath(mediaPath string) string {
	return utils.ReplaceExt(mediaPath, ".srt")
}

// ScanDirectory 扫描指定目录中的媒体文件（非递归），按文件名排序
func (s *MediaScanner) ScanDirectory(dir string) ([]MediaFile, error) {
	logrus.Debugf("开始扫描目录: %s", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, utils.IOError("scan", "读取目录失败: "+dir, err)
	}

	var mediaFiles []MediaFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !s.Match(path) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logrus.Warnf("获取文件信息失败: %v", err)
			continue
		}

		ext := strings.ToLower(filepath.Ext(path))
		file := MediaFile{
			Path:    path,
			Name:    entry.Name(),
			Ext:     ext,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsVideo: contains(s.VideoExtensions, ext),
		}
		if sub, err := os.Stat(SubtitlePath(path)); err == nil && !sub.ModTime().Before(file.ModTime) {
			file.HasSubtitle = true
		}
		mediaFiles = append(mediaFiles, file)
	}

	sort.Slice(mediaFiles, func(i, j int) bool { return mediaFiles[i].Name < mediaFiles[j].Name })
	logrus.Debugf("扫描完成，共找到 %d 个媒体文件", len(mediaFiles))
	return mediaFiles, nil
}

// FilterPending 过滤出还没有字幕的文件
func (s *MediaScanner) FilterPending(files []MediaFile) []MediaFile {
	var pending []MediaFile
	for _, file := range files {
		if !file.HasSubtitle {
			pending = append(pending, file)
		}
	}

	logrus.Infof("共 %d 个媒体文件，其中 %d 个需要生成字幕", len(files), len(pending))
	return pending
}
