package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDevice(t *testing.T) {
	ctx := context.Background()
	gpu := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		assert.Equal(t, "nvidia-smi", name)
		return []byte("GPU 0: NVIDIA"), nil
	}
	noGPU := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("executable file not found")
	}

	assert.Equal(t, "cuda", ResolveDevice(ctx, gpu, "auto"))
	assert.Equal(t, "cuda", ResolveDevice(ctx, gpu, ""))
	assert.Equal(t, "cpu", ResolveDevice(ctx, noGPU, "auto"))
	// 显式指定的设备不做检测
	assert.Equal(t, "cpu", ResolveDevice(ctx, gpu, "cpu"))
	assert.Equal(t, "cuda", ResolveDevice(ctx, noGPU, "cuda"))
}

func TestCheckCommand(t *testing.T) {
	assert.False(t, CheckCommand(""))
	assert.False(t, CheckCommand("definitely-not-a-real-command-xyz"))
}

func TestRunCommandError(t *testing.T) {
	_, err := RunCommand(context.Background(), "definitely-not-a-real-command-xyz")
	assert.Error(t, err)
}
