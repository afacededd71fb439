package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccp-p/asr-media-cli/speaker-srt/internal/ui"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/export"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:         "verify FILE.srt",
		Short:       "检查SRT文件并预览字幕",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cues, err := export.ReadSRTFile(args[0])
			if err != nil {
				return err
			}

			term := ctx.terminal(cmd)
			if len(cues) == 0 {
				term.Warn("%s 中没有字幕", args[0])
				return nil
			}

			term.PrintMsg("%s", ui.RenderCueTable(cues, limit))
			if err := checkCues(cues); err != nil {
				return err
			}
			term.Success("共 %d 条字幕，时间范围 %s --> %s",
				len(cues), export.FormatSRTTime(cues[0].Start), export.FormatSRTTime(cues[len(cues)-1].End))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "预览的字幕条数，0表示全部")
	return cmd
}

// checkCues 检查序号连续且每条字幕的时间范围有效
func checkCues(cues []models.SubtitleCue) error {
	for i, cue := range cues {
		if cue.Index != i+1 {
			return utils.ValidationError("verify", fmt.Sprintf("第 %d 条字幕序号为 %d", i+1, cue.Index), nil)
		}
		if cue.End <= cue.Start {
			return utils.ValidationError("verify", fmt.Sprintf("第 %d 条字幕结束时间不晚于开始时间", cue.Index), nil)
		}
	}
	return nil
}
