package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ccp-p/asr-media-cli/subgen/internal/controller"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/models"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

const usageLine = "subgen [flags] <model> <language|auto> <input files...>"

// globalFlags 所有子命令共用的参数
type globalFlags struct {
	configFile string
	logLevel   string
	logFile    string
	workers    int
	noProgress bool
}

func (f *globalFlags) options(out io.Writer) controller.Options {
	return controller.Options{
		ConfigFile: f.configFile,
		LogLevel:   f.logLevel,
		LogFile:    f.logFile,
		Workers:    f.workers,
		NoProgress: f.noProgress,
		Out:        out,
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           usageLine,
		Short:         "为音视频文件批量生成 SRT 字幕",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 {
				return utils.NewUsageError("参数不足，用法: %s", usageLine)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			model, language, files := args[0], args[1], args[2:]
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
			pc.ProcessFiles(model, language, files)
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "配置文件路径 (TOML/YAML/JSON)")
	pf.StringVar(&flags.logLevel, "log-level", "", "日志级别 (debug, info, warn, error)")
	pf.StringVar(&flags.logFile, "log-file", "", "日志文件路径")
	pf.IntVar(&flags.workers, "workers", 0, "同时处理的文件数 (实验性，默认顺序处理)")
	pf.BoolVar(&flags.noProgress, "no-progress", false, "不显示进度条")

	rootCmd.AddCommand(newWatchCommand(flags))
	rootCmd.AddCommand(newConfigCommand(flags))

	return rootCmd
}

func printWelcome(out io.Writer) {
	banner := color.New(color.FgCyan)
	fmt.Fprintln(out)
	banner.Fprintln(out, "================================")
	banner.Fprintln(out, "     subgen - 字幕批量生成工具     ")
	banner.Fprintln(out, "================================")
	fmt.Fprintln(out)
}
