package diarize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

const scriptJSON = `{"segments":[
  {"start": 3.0, "end": 4.5, "speaker": "SPEAKER_01"},
  {"start": 0.0, "end": 3.0, "speaker": "SPEAKER_00"},
  {"start": 4.5, "end": 12.0, "speaker": "SPEAKER_00"},
  {"start": 11.0, "end": 13.0, "speaker": " "}
]}`

type call struct {
	env  []string
	name string
	args []string
}

func newTestDiarizer(t *testing.T, output string, runErr error, calls *[]call) *PyannoteDiarizer {
	script := filepath.Join(t.TempDir(), "diarize.py")
	require.NoError(t, os.WriteFile(script, []byte("print('{}')"), 0644))

	d := NewPyannoteDiarizer(models.DiarizeConfig{Python: "python3", Script: script, Device: models.DeviceAuto}, "hf_secret")
	d.Run = func(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, call{env: env, name: name, args: args})
		if name == "nvidia-smi" {
			return nil, errors.New("not found")
		}
		return []byte(output), runErr
	}
	return d
}

func TestDiarize(t *testing.T) {
	t.Setenv(PythonEnv, "")
	var calls []call
	d := newTestDiarizer(t, scriptJSON, nil, &calls)

	spans, err := d.Diarize(context.Background(), "/tmp/a.wav", 10)
	require.NoError(t, err)

	require.Len(t, spans, 3)
	assert.Equal(t, models.DiarizationSpan{Start: 0, End: 3, Speaker: "SPEAKER_00"}, spans[0])
	assert.Equal(t, "SPEAKER_01", spans[1].Speaker)
	// 超出时长的区间被截断
	assert.InDelta(t, 10.0, spans[2].End, 1e-9)

	require.Len(t, calls, 2)
	last := calls[1]
	assert.Equal(t, "python3", last.name)
	assert.Equal(t, []string{d.Script, "--input", "/tmp/a.wav", "--device", "cpu"}, last.args)
	assert.Contains(t, last.env, "HUGGINGFACE_TOKEN=hf_secret")
}

func TestDiarizeWithoutToken(t *testing.T) {
	var calls []call
	d := newTestDiarizer(t, `{"segments":[]}`, nil, &calls)
	d.HFToken = ""
	d.Device = models.DeviceCUDA

	spans, err := d.Diarize(context.Background(), "a.wav", 0)
	require.NoError(t, err)
	assert.Empty(t, spans)

	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].env)
	assert.Equal(t, "cuda", calls[0].args[len(calls[0].args)-1])
}

func TestDiarizeFailure(t *testing.T) {
	var calls []call
	d := newTestDiarizer(t, "", errors.New("ModuleNotFoundError: pyannote"), &calls)
	d.Device = models.DeviceCPU

	_, err := d.Diarize(context.Background(), "a.wav", 0)
	require.Error(t, err)
	assert.Equal(t, utils.KindCollaborator, utils.KindOf(err))
	assert.Contains(t, err.Error(), "pyannote")
}

func TestDiarizeBadOutput(t *testing.T) {
	var calls []call
	d := newTestDiarizer(t, "Loading model...\n", nil, &calls)
	d.Device = models.DeviceCPU

	_, err := d.Diarize(context.Background(), "a.wav", 0)
	require.Error(t, err)
	assert.Equal(t, utils.KindCollaborator, utils.KindOf(err))
}

func TestDiarizeMissingScript(t *testing.T) {
	d := NewPyannoteDiarizer(models.DiarizeConfig{Script: "/no/such/script.py"}, "")
	_, err := d.Diarize(context.Background(), "a.wav", 0)
	require.Error(t, err)
	assert.Equal(t, utils.KindCollaborator, utils.KindOf(err))
}

func TestPythonEnvOverride(t *testing.T) {
	t.Setenv(PythonEnv, "/opt/venv/bin/python")
	d := NewPyannoteDiarizer(models.DiarizeConfig{Python: "python3"}, "")
	assert.Equal(t, "/opt/venv/bin/python", d.Python)

	t.Setenv(PythonEnv, "")
	d = NewPyannoteDiarizer(models.DiarizeConfig{}, "")
	assert.Equal(t, "python3", d.Python)
}

func TestParseSpansUnknownSpeaker(t *testing.T) {
	spans, err := ParseSpans([]byte(`{"segments":[{"start":1,"end":2,"speaker":""}]}`))
	require.NoError(t, err)
	assert.Equal(t, models.UnknownSpeaker, spans[0].Speaker)
}

func TestClampSpans(t *testing.T) {
	spans := []models.DiarizationSpan{
		{Start: 0, End: 5, Speaker: "A"},
		{Start: 4, End: 9, Speaker: "B"},
		{Start: 8, End: 9, Speaker: "C"},
	}
	clamped := ClampSpans(spans, 8)
	require.Len(t, clamped, 2)
	assert.InDelta(t, 8.0, clamped[1].End, 1e-9)
	// 原切片不被修改
	assert.InDelta(t, 9.0, spans[1].End, 1e-9)
}
