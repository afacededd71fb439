package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
)

func TestGenerateJSONContent(t *testing.T) {
	exporter := NewJSONExporter("zh")
	result := exporter.GenerateJSONContent([]models.LabeledSegment{
		labeled(0, 1, " 你好 ", "SPEAKER_01"),
		labeled(1, 2, "世界", "SPEAKER_00"),
		labeled(2, 3, "", "SPEAKER_01"),
	})

	assert.Equal(t, "zh", result.Language)
	assert.Equal(t, "你好 世界", result.FullText)
	assert.Equal(t, []string{"SPEAKER_00", "SPEAKER_01"}, result.Speakers)
	require.Len(t, result.Segments, 3)
	assert.Equal(t, 1, result.Segments[0].Index)
	assert.Equal(t, "你好", result.Segments[0].Text)
	assert.Equal(t, "SPEAKER_00", result.Segments[1].Speaker)
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.json")

	err := NewJSONExporter("").ExportJSON([]models.LabeledSegment{labeled(0.5, 2, "hi", "A")}, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded TranscriptResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "hi", decoded.FullText)
	assert.Equal(t, []string{"A"}, decoded.Speakers)
	assert.InDelta(t, 0.5, decoded.Segments[0].Start, 1e-9)
	assert.NotContains(t, string(data), "language")
}
