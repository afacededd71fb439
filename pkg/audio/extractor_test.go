package audio

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// fakeFFmpeg 模拟ffmpeg，把最后一个参数当作输出文件写入
func fakeFFmpeg(calls *[][]string) utils.CommandRunner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, append([]string{name}, args...))
		return nil, os.WriteFile(args[len(args)-1], []byte("RIFF"), 0644)
	}
}

func TestExtractAudio(t *testing.T) {
	dir := t.TempDir()
	var calls [][]string

	extractor := NewAudioExtractor("")
	extractor.Run = fakeFFmpeg(&calls)

	path, err := extractor.ExtractAudio(context.Background(), "/videos/talk.mp4", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, NormalizedName), path)

	require.Len(t, calls, 1)
	assert.Equal(t, "ffmpeg", calls[0][0])
	assert.Contains(t, calls[0], "/videos/talk.mp4")
	assert.Contains(t, calls[0], "16000")
}

func TestExtractAudioFailure(t *testing.T) {
	extractor := NewAudioExtractor("/opt/ffmpeg")
	extractor.Run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		assert.Equal(t, "/opt/ffmpeg", name)
		return nil, errors.New("exit status 1")
	}

	_, err := extractor.ExtractAudio(context.Background(), "in.mkv", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, utils.KindCollaborator, utils.KindOf(err))
}

func TestExtractAudioMissingOutput(t *testing.T) {
	extractor := NewAudioExtractor("")
	extractor.Run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, nil
	}

	_, err := extractor.ExtractAudio(context.Background(), "in.mkv", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, utils.KindCollaborator, utils.KindOf(err))
}

// 集成测试 - 需要ffmpeg可用
func TestExtractAudioWithFFmpeg(t *testing.T) {
	if !utils.CheckFFmpeg() {
		t.Skip("跳过测试：未安装FFmpeg")
	}

	dir := t.TempDir()
	video := filepath.Join(dir, "test.mp4")
	cmd := exec.Command("ffmpeg", "-f", "lavfi", "-i", "sine=frequency=440:duration=1",
		"-f", "lavfi", "-i", "color=c=black:s=64x64:d=1", "-shortest", video, "-y")
	if err := cmd.Run(); err != nil {
		t.Skipf("无法生成测试视频: %v", err)
	}

	path, err := NewAudioExtractor("").ExtractAudio(context.Background(), video, dir)
	require.NoError(t, err)
	assert.True(t, utils.CheckFileExists(path))
}
