package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/NFOSaver/internal/config"
	"github.com/John-Robertt/NFOSaver/internal/logging"
)

// commandContext 保存全局 flag，子命令按需加载配置与 logger。
type commandContext struct {
	configFlag string
	logLevel   string
	logFormat  string
	journal    string
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "nfosaver",
		Short:         "为媒体条目生成/合并 Kodi 兼容的 NFO 文件",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "配置文件路径（默认 ./"+config.FileName+"，可选）")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "info", "日志级别：debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&ctx.logFormat, "log-format", "text", "日志格式：text|json")
	rootCmd.PersistentFlags().StringVar(&ctx.journal, "journal", "", "保存记录数据库（sqlite）路径；为空则不记录")

	rootCmd.AddCommand(newPathsCommand(ctx))
	rootCmd.AddCommand(newPlanCommand(ctx))
	rootCmd.AddCommand(newSaveCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

// options 读取生效配置；返回实际使用的配置文件（未读取文件时为空）。
func (c *commandContext) options() (config.Options, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.Options{}, "", fmt.Errorf("读取当前目录失败：%w", err)
	}
	return config.Load(cwd, c.configFlag)
}

// logger 总是写到 stderr（stdout 留给报告输出）。
func (c *commandContext) logger(w io.Writer) (*slog.Logger, error) {
	return logging.New(logging.Options{Level: c.logLevel, Format: c.logFormat, Output: w})
}
