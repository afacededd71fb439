// Package audio 负责把用户输入（本地路径或YouTube链接）转换为可识别的音频文件。
package audio

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// TempDirPrefix 每次运行创建的临时目录前缀
const TempDirPrefix = "speaker-srt-"

// Audio 是一次处理所用的音频文件
type Audio struct {
	Path    string            // 音频文件路径
	Input   string            // 用户原始输入
	Source  models.SourceKind // 来源类型
	tempDir string            // 非空时Release会删除该目录
}

// Temporary 返回音频是否位于本次运行创建的临时目录中
func (a *Audio) Temporary() bool {
	return a != nil && a.tempDir != ""
}

// Release 删除本次运行产生的临时文件，可重复调用。
// 用户提供的本地音频不会被删除。
func (a *Audio) Release() {
	if a == nil || a.tempDir == "" {
		return
	}
	if err := os.RemoveAll(a.tempDir); err != nil {
		utils.Warn("清理临时目录失败: %s: %v", a.tempDir, err)
	} else {
		utils.Debug("已清理临时目录: %s", a.tempDir)
	}
	a.tempDir = ""
}

// Provider 根据输入获取音频
type Provider interface {
	Acquire(ctx context.Context, input string) (*Audio, error)
}

// newRunDir 在base（为空时使用系统临时目录）下创建 speaker-srt-<uuid> 目录
func newRunDir(base string) (string, error) {
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, TempDirPrefix+uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", utils.IOError("audio", "创建临时目录失败: "+dir, err)
	}
	return dir, nil
}

// CleanInput 去掉输入两端的空白和拖拽文件时带上的引号
func CleanInput(input string) string {
	input = strings.TrimSpace(input)
	if len(input) >= 2 {
		first, last := input[0], input[len(input)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			input = strings.TrimSpace(input[1 : len(input)-1])
		}
	}
	return input
}
