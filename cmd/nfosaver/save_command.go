package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/NFOSaver/internal/app/run"
	"github.com/John-Robertt/NFOSaver/internal/app/save"
	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/journal"
	"github.com/John-Robertt/NFOSaver/internal/saver"
)

// errItemsFailed 只用于退出码：失败细节已经在报告里。
var errItemsFailed = errors.New("部分条目保存失败")

func newSaveCommand(ctx *commandContext) *cobra.Command {
	var (
		exclude    []string
		updateFlag string
		apply      bool
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "save <dir|manifest.json>",
		Short: "批量保存 NFO（默认 dry-run，--apply 才写入）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers < 1 {
				return fmt.Errorf("--workers 必须 >= 1，实际是 %d", workers)
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts, cfgPath, err := ctx.options()
			if err != nil {
				return err
			}
			if cfgPath != "" {
				logger.Debug("使用配置文件", "config", cfgPath)
			}
			in, err := loadInput(args[0], exclude)
			if err != nil {
				return err
			}
			update, err := resolveUpdate(updateFlag, in.Update)
			if err != nil {
				return err
			}

			runner := &run.Runner{
				Service: save.New(saver.Default(), opts),
				Logger:  logger,
			}
			if ctx.journal != "" {
				j, err := journal.Open(ctx.journal)
				if err != nil {
					return err
				}
				defer j.Close()
				runner.Recorder = j
			}
			if w, ok := pickProgressWriter(cmd); ok {
				runner.Observer = newProgressUI(w)
			}

			rr := runner.Execute(cmd.Context(), in.Items, run.Options{
				Source:  in.Source,
				Update:  update,
				Apply:   apply,
				Workers: workers,
			})
			if err := emitReport(cmd, rr); err != nil {
				return err
			}
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if rr.Summary.Failed > 0 {
				return errItemsFailed
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "扫描目录时排除的子目录（相对输入目录）")
	cmd.Flags().StringVar(&updateFlag, "update-kind", "", "触发保存的更新类型（默认取清单值，否则 metadata_edit）")
	cmd.Flags().BoolVar(&apply, "apply", false, "真正写入文件（默认 dry-run）")
	cmd.Flags().IntVarP(&workers, "workers", "j", 4, "并发 worker 数")
	return cmd
}

// emitReport：stdout 是终端时输出摘要与失败表格；否则 stdout 只输出一个 RunReport JSON。
func emitReport(cmd *cobra.Command, rr domain.RunReport) error {
	out := cmd.OutOrStdout()
	summary := fmt.Sprintf("完成：saved=%d unchanged=%d skipped=%d failed=%d",
		rr.Summary.Saved, rr.Summary.Unchanged, rr.Summary.Skipped, rr.Summary.Failed,
	)
	if rr.DryRun {
		summary += "（dry-run，未写入）"
	}

	if !isTerminal(out) {
		enc := json.NewEncoder(out)
		if err := enc.Encode(rr); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), summary)
		return nil
	}

	fmt.Fprintln(out, summary)
	var rows [][]string
	for _, it := range rr.Items {
		if domain.SaveStatus(it.Status) != domain.SaveFailed {
			continue
		}
		rows = append(rows, []string{it.Item, it.Saver, it.ErrorCode, truncate(it.ErrorMsg, 120)})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"ITEM", "SAVER", "CODE", "ERROR"}, rows, nil))
	}
	return nil
}
