package main

import (
	"github.com/spf13/cobra"

	"github.com/ccp-p/asr-media-cli/speaker-srt/internal/controller"
	"github.com/ccp-p/asr-media-cli/speaker-srt/internal/ui"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

func newLocalCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "local [PATH...]",
		Short: "处理本地音频或视频文件，不带参数时进入交互模式",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSource(cmd, ctx, models.SourceLocal, args)
		},
	}
}

func newYouTubeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "youtube [URL...]",
		Short: "下载YouTube视频音频并生成字幕，不带参数时进入交互模式",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSource(cmd, ctx, models.SourceYouTube, args)
		},
	}
}

// runSource 给出参数时逐个处理，否则进入交互循环
func runSource(cmd *cobra.Command, ctx *commandContext, kind models.SourceKind, args []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	term := ctx.terminal(cmd)
	printWelcome(term, kind)
	checkDependencies(term, cfg, kind)

	runCtx, cancel := controller.SignalContext(cmd.Context())
	defer cancel()

	pc := controller.NewProcessorController(cfg, term)
	defer pc.Cleanup()
	defer pc.PrintSummary()

	if len(args) > 0 {
		return pc.RunBatch(runCtx, args, kind)
	}
	return pc.RunInteractive(runCtx, cmd.InOrStdin(), kind)
}

func printWelcome(term *ui.TerminalManager, kind models.SourceKind) {
	subtitle := "本地文件模式"
	if kind == models.SourceYouTube {
		subtitle = "YouTube模式"
	}
	term.Banner("说话人字幕生成工具", subtitle)
}

// checkDependencies 外部工具缺失时只警告，具体错误在处理时报告
func checkDependencies(term *ui.TerminalManager, cfg *models.Config, kind models.SourceKind) {
	required := []string{cfg.FFprobeCommand, cfg.FFmpegCommand}
	if kind == models.SourceYouTube {
		required = append(required, cfg.YtDlpCommand)
	}
	if cfg.Recognizer != models.RecognizerKuaishou {
		required = append(required, cfg.WhisperX.Command)
	}
	if cfg.Diarize.Enabled {
		required = append(required, cfg.Diarize.Python)
	}

	for _, name := range required {
		if !utils.CheckCommand(name) {
			term.Warn("未检测到 %s，请确保已安装并添加到系统路径", name)
		}
	}
	if cfg.Diarize.Enabled && cfg.HFToken() == "" {
		term.Warn("未设置 %s，说话人分离可能无法下载模型", cfg.HFTokenEnv)
	}
}
