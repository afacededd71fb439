package main

import (
	"github.com/spf13/cobra"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "speakersrt",
		Short:         "为音频生成带说话人标签的SRT字幕",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnv(); err != nil {
				utils.Warn("读取 .env 失败: %v", err)
			}
			if shouldSkipConfig(cmd) {
				return ctx.initOutput(nil)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.initOutput(cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	ctx.cmd = rootCmd

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "配置文件路径（.json/.yaml）")
	pf.StringVar(&flags.logLevel, "log-level", "info", "日志级别 (debug, info, warn, error)")
	pf.StringVar(&flags.logFile, "log-file", "", "日志文件路径")
	pf.StringVarP(&flags.output, "output", "o", "output.srt", "字幕输出路径")
	pf.StringVarP(&flags.recognizer, "recognizer", "r", models.RecognizerWhisperX, "识别服务 (whisperx, kuaishou, auto)")
	pf.BoolVar(&flags.noColor, "no-color", false, "关闭彩色输出和进度条")

	rootCmd.AddCommand(newLocalCommand(ctx))
	rootCmd.AddCommand(newYouTubeCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newVerifyCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
