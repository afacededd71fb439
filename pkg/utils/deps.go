package utils

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CommandRunner 执行外部命令并返回标准输出，测试中可替换
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// RunCommand 是默认的命令执行器，失败时附带stderr内容
func RunCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return RunCommandWithEnv(ctx, nil, name, args...)
}

// EnvCommandRunner 执行外部命令时追加环境变量
type EnvCommandRunner func(ctx context.Context, env []string, name string, args ...string) ([]byte, error)

// RunCommandWithEnv 在当前环境变量基础上追加env后执行命令
func RunCommandWithEnv(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Env = append(os.Environ(), env...)
	output, err := cmd.Output()
	if err != nil {
		// 被取消的命令返回上下文错误，便于上层识别为用户中断
		if ctxErr := ctx.Err(); ctxErr != nil {
			return output, fmt.Errorf("%s: %w", name, ctxErr)
		}
		if ee, ok := err.(*exec.ExitError); ok {
			return output, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(ee.Stderr)))
		}
		return output, fmt.Errorf("%s: %w", name, err)
	}
	return output, nil
}

// CheckCommand 检查命令是否在PATH中可用
func CheckCommand(name string) bool {
	if name == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}

// CheckFFmpeg 检查FFmpeg是否可用
func CheckFFmpeg() bool {
	return CheckCommand("ffmpeg")
}

// ResolveDevice 将 "auto" 解析为具体设备：nvidia-smi 可以正常运行时使用cuda，否则使用cpu
func ResolveDevice(ctx context.Context, run CommandRunner, device string) string {
	if device != "" && device != "auto" {
		return device
	}
	if run == nil {
		run = RunCommand
	}
	if _, err := run(ctx, "nvidia-smi", "-L"); err == nil {
		Debug("检测到NVIDIA GPU，使用cuda")
		return "cuda"
	}
	return "cpu"
}
