package asr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
)

func TestFileCRC32(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bin")
	require.NoError(t, os.WriteFile(path, []byte("123456789"), 0644))

	sum, err := FileCRC32(path)
	require.NoError(t, err)
	// IEEE标准校验值
	assert.Equal(t, "cbf43926", sum)

	_, err = FileCRC32(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "a.wav")
	require.NoError(t, os.WriteFile(audio, []byte("123456789"), 0644))

	cache := NewCache(filepath.Join(dir, "cache"))
	key, err := cache.Key("whisperx", audio)
	require.NoError(t, err)
	assert.Equal(t, "whisperx-cbf43926", key)

	withParams, err := cache.Key("whisperx", audio, "large-v2", "", "zh/CN")
	require.NoError(t, err)
	assert.Equal(t, "whisperx-large-v2-auto-zh_CN-cbf43926", withParams)

	_, ok := cache.Load(key)
	assert.False(t, ok)

	segments := []models.Segment{{Start: 0, End: 1.5, Text: "你好"}}
	require.NoError(t, cache.Save(key, segments))

	loaded, ok := cache.Load(key)
	require.True(t, ok)
	assert.Equal(t, segments, loaded)

	// 空结果也会被缓存
	require.NoError(t, cache.Save("empty", nil))
	loaded, ok = cache.Load("empty")
	require.True(t, ok)
	assert.Empty(t, loaded)
}

func TestCacheCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "k.json"), []byte("{"), 0644))

	_, ok := NewCache(dir).Load("k")
	assert.False(t, ok)
}

func TestNilCache(t *testing.T) {
	var cache *Cache
	assert.Nil(t, NewCache(""))
	_, ok := cache.Load("x")
	assert.False(t, ok)
	assert.NoError(t, cache.Save("x", nil))
}
