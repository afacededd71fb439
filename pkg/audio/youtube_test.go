package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// outputTemplate 从yt-dlp参数中取出 -o 的值
func outputTemplate(args []string) string {
	for i, arg := range args {
		if arg == "-o" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestIsYouTubeURL(t *testing.T) {
	assert.True(t, IsYouTubeURL("https://www.youtube.com/watch?v=abc"))
	assert.True(t, IsYouTubeURL("https://youtu.be/abc"))
	assert.True(t, IsYouTubeURL(" http://m.youtube.com/watch?v=abc "))
	assert.False(t, IsYouTubeURL("https://example.com/watch?v=abc"))
	assert.False(t, IsYouTubeURL("youtube.com/watch?v=abc"))
	assert.False(t, IsYouTubeURL("/tmp/a.mp3"))
}

func TestYouTubeSourceAcquire(t *testing.T) {
	base := t.TempDir()
	var gotArgs []string

	src := NewYouTubeSource("", base)
	src.Run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		assert.Equal(t, "yt-dlp", name)
		gotArgs = args
		out := strings.Replace(outputTemplate(args), "%(ext)s", "mp3", 1)
		return nil, os.WriteFile(out, []byte("ID3"), 0644)
	}

	audio, err := src.Acquire(context.Background(), "https://youtu.be/xyz")
	require.NoError(t, err)

	assert.Equal(t, models.SourceYouTube, audio.Source)
	assert.Equal(t, "audio.mp3", filepath.Base(audio.Path))
	assert.True(t, audio.Temporary())
	assert.Contains(t, gotArgs, "--no-playlist")
	assert.Equal(t, "https://youtu.be/xyz", gotArgs[len(gotArgs)-1])

	runDir := filepath.Dir(audio.Path)
	assert.True(t, strings.HasPrefix(filepath.Base(runDir), TempDirPrefix))
	audio.Release()
	assert.False(t, utils.CheckDirExists(runDir))
}

func TestYouTubeSourceUniqueDirs(t *testing.T) {
	base := t.TempDir()
	src := NewYouTubeSource("", base)
	src.Run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		out := strings.Replace(outputTemplate(args), "%(ext)s", "m4a", 1)
		return nil, os.WriteFile(out, []byte("x"), 0644)
	}

	a, err := src.Acquire(context.Background(), "https://youtu.be/1")
	require.NoError(t, err)
	defer a.Release()
	b, err := src.Acquire(context.Background(), "https://youtu.be/1")
	require.NoError(t, err)
	defer b.Release()

	assert.NotEqual(t, a.Path, b.Path)
	assert.Equal(t, "audio.m4a", filepath.Base(a.Path))
}

func TestYouTubeSourceInvalidURL(t *testing.T) {
	src := NewYouTubeSource("", t.TempDir())
	src.Run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		t.Fatal("不应调用yt-dlp")
		return nil, nil
	}

	_, err := src.Acquire(context.Background(), "not a url")
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestYouTubeSourceDownloadFailureCleansUp(t *testing.T) {
	base := t.TempDir()
	src := NewYouTubeSource("", base)
	src.Run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		// 留下残缺文件
		_ = os.WriteFile(strings.Replace(outputTemplate(args), "%(ext)s", "part", 1), []byte("x"), 0644)
		return nil, errors.New("HTTP Error 403")
	}

	_, err := src.Acquire(context.Background(), "https://www.youtube.com/watch?v=x")
	require.Error(t, err)
	assert.Equal(t, utils.KindCollaborator, utils.KindOf(err))

	matches, _ := filepath.Glob(filepath.Join(base, TempDirPrefix+"*"))
	assert.Empty(t, matches)
}

func TestYouTubeSourceCanceled(t *testing.T) {
	base := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewYouTubeSource("", base)
	src.Run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, ctx.Err()
	}

	_, err := src.Acquire(ctx, "https://youtu.be/x")
	require.Error(t, err)
	assert.Equal(t, utils.KindCanceled, utils.KindOf(err))

	matches, _ := filepath.Glob(filepath.Join(base, TempDirPrefix+"*"))
	assert.Empty(t, matches)
}

func TestYouTubeSourceNoFile(t *testing.T) {
	src := NewYouTubeSource("", t.TempDir())
	src.Run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, nil
	}

	_, err := src.Acquire(context.Background(), "https://youtu.be/x")
	require.Error(t, err)
	assert.Equal(t, utils.KindCollaborator, utils.KindOf(err))
}
