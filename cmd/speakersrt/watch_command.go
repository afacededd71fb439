package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ccp-p/asr-media-cli/speaker-srt/internal/controller"
	"github.com/ccp-p/asr-media-cli/speaker-srt/internal/watcher"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [DIR]",
		Short: "监控目录，为新出现的音频文件生成同名字幕",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if abs, err := filepath.Abs(dir); err == nil {
				dir = abs
			}

			term := ctx.terminal(cmd)
			term.Banner("说话人字幕生成工具", "监控模式: "+dir)
			checkDependencies(term, cfg, models.SourceLocal)

			runCtx, cancel := controller.SignalContext(cmd.Context())
			defer cancel()

			pc := controller.NewProcessorController(cfg, term)
			defer pc.Cleanup()
			defer pc.PrintSummary()

			return watcher.NewMediaWatcher(dir, cfg, pc).Run(runCtx)
		},
	}
}
