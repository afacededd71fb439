package controller

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ccp-p/asr-media-cli/speaker-srt/internal/ui"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// 交互提示
const (
	PromptLocal   = "请输入音频文件路径（输入'q'退出）: "
	PromptYouTube = "请输入YouTube视频链接（输入'q'退出）: "
	MsgEmptyInput = "路径不能为空！"
	MsgGoodbye    = "程序已退出"
)

// PromptFor 返回输入类型对应的提示
func PromptFor(kind models.SourceKind) string {
	if kind == models.SourceYouTube {
		return PromptYouTube
	}
	return PromptLocal
}

// readLines 在后台逐行读取，以便等待输入时也能响应中断。
// done关闭后不再发送，读取协程在下一行读完后退出。
func readLines(in io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}

// RunInteractive 循环读取输入并处理，直到输入q、输入结束或收到中断。
// 单个输入的失败只会被报告，不会结束循环。
func (pc *ProcessorController) RunInteractive(ctx context.Context, in io.Reader, kind models.SourceKind) error {
	done := make(chan struct{})
	defer close(done)
	lines := readLines(in, done)

	for {
		pc.Terminal.Prompt(PromptFor(kind))

		var line string
		select {
		case <-ctx.Done():
			pc.Terminal.PrintMsg("")
			pc.Terminal.Warn("已中断")
			return nil
		case l, ok := <-lines:
			if !ok {
				pc.Terminal.PrintMsg("")
				pc.Terminal.Info(MsgGoodbye)
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if strings.EqualFold(line, "q") {
			pc.Terminal.Info(MsgGoodbye)
			return nil
		}
		if line == "" {
			pc.Terminal.Warn(MsgEmptyInput)
			continue
		}

		_, err := pc.ProcessAndReport(ctx, line, kind, pc.Config.OutputPath)
		if err != nil && ctx.Err() != nil {
			pc.Terminal.Warn("已中断")
			return nil
		}
	}
}

// RunBatch 依次处理命令行给出的输入，有失败时返回错误
func (pc *ProcessorController) RunBatch(ctx context.Context, inputs []string, kind models.SourceKind) error {
	failed := 0
	for _, input := range inputs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := pc.ProcessAndReport(ctx, input, kind, pc.Config.OutputPath); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d 个输入处理失败", failed)
	}
	return nil
}

// ProcessAndReport 处理一个输入并在终端报告结果
func (pc *ProcessorController) ProcessAndReport(ctx context.Context, input string, kind models.SourceKind, outputPath string) (*models.Result, error) {
	result, err := pc.Process(ctx, input, kind, outputPath)
	if err != nil {
		pc.ReportError(err)
		return result, err
	}

	pc.Terminal.Success("字幕文件已生成：%s (%d 条, 识别服务: %s)", outputPath, result.SegmentCount, result.Recognizer)
	if path, ok := result.OutputFiles["json"]; ok {
		pc.Terminal.Success("JSON文件已生成：%s", path)
	}
	if result.SegmentCount > 0 {
		pc.Terminal.PrintMsg("%s", ui.RenderSpeakerTable(result))
	}
	return result, nil
}

// ReportError 按错误类型打印错误信息
func (pc *ProcessorController) ReportError(err error) {
	kind := utils.KindOf(err)
	switch kind {
	case utils.KindCanceled:
		pc.Terminal.Warn("处理已取消")
	case utils.KindUnknown:
		pc.Terminal.Error("处理过程中出现错误：%v", err)
	default:
		pc.Terminal.Error("[%s] %v", kind, err)
	}
	utils.Error("处理失败: %v", err)
}
