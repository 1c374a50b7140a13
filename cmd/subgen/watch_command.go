package main

import (
	"github.com/spf13/cobra"

	"github.com/ccp-p/asr-media-cli/subgen/internal/controller"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/models"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

func newWatchCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <model> <language|auto> <dir>",
		Short: "处理目录中没有字幕的媒体文件，并持续监控新文件",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 3 {
				return utils.NewUsageError("用法: subgen watch <model> <language|auto> <dir>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			model, language, dir := args[0], args[1], args[2]
			if err := models.ValidateLanguage(language); err != nil {
				return utils.NewUsageError("%v", err)
			}

			pc, err := controller.NewProcessorController(flags.options(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			defer pc.Cleanup()
			pc.SetupSignalHandlers()

			printWelcome(cmd.OutOrStdout())
			return pc.StartWatchMode(model, language, dir)
		},
	}
}
