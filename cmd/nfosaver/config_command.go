package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/NFOSaver/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "配置工具",
	}
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	return configCmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "以 TOML 输出生效配置（默认值 + 配置文件）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, path, err := ctx.options()
			if err != nil {
				return err
			}
			b, err := config.Encode(opts)
			if err != nil {
				return fmt.Errorf("编码配置失败：%w", err)
			}
			out := cmd.OutOrStdout()
			if path != "" {
				fmt.Fprintf(out, "# 来源：%s\n", path)
			} else {
				fmt.Fprintln(out, "# 来源：内置默认值")
			}
			_, err = out.Write(b)
			return err
		},
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "校验配置文件",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := ctx.options()
			if err != nil {
				return fmt.Errorf("%s：%w", config.Code(err), err)
			}
			out := cmd.OutOrStdout()
			if path == "" {
				fmt.Fprintln(out, "未找到配置文件，使用默认值")
			} else {
				fmt.Fprintf(out, "配置文件：%s\n", path)
			}
			fmt.Fprintln(out, "配置有效")
			return nil
		},
	}
}
