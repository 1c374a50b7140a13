package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccp-p/asr-media-cli/subgen/internal/controller"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/models"
)

const defaultConfigPath = "subgen.toml"

func newConfigCommand(flags *globalFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "配置文件工具",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(flags))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "写出默认配置文件 (TOML)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := defaultConfigPath
			if len(args) == 1 {
				target = args[0]
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("配置文件已存在: %s (使用 --overwrite 覆盖)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("检查配置文件失败: %w", err)
				}
			}

			if err := models.NewDefaultConfig().SaveToFile(target); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "已写出默认配置: %s\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "覆盖已存在的配置文件")
	return cmd
}

func newConfigShowCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "显示生效的配置",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := controller.LoadConfig(flags.options(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			return config.Encode(cmd.OutOrStdout())
		},
	}
}
