package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/NFOSaver/internal/app/planner"
	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/saver"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var (
		exclude    []string
		updateFlag string
	)

	cmd := &cobra.Command{
		Use:   "plan <dir|manifest.json>",
		Short: "生成保存计划：选中的 saver、目标路径、新建还是合并",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, err := ctx.options()
			if err != nil {
				return err
			}
			in, err := loadInput(args[0], exclude)
			if err != nil {
				return err
			}
			update, err := resolveUpdate(updateFlag, in.Update)
			if err != nil {
				return err
			}

			reg := saver.Default()
			plans := make([]domain.ItemPlan, 0, len(in.Items))
			for _, it := range in.Items {
				plans = append(plans, planner.PlanItem(reg, it, update, opts.MinimumUpdate()))
			}
			planner.SortPlans(plans)

			if !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, plans)
			}
			rows := make([][]string, 0, len(plans))
			for _, p := range plans {
				detail := p.Target
				if p.Action == domain.PlanSkip {
					detail = string(p.SkipReason)
				}
				rows = append(rows, []string{p.Item, string(p.Kind), p.Saver, string(p.Action), detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "update_kind: %s  minimum: %s\n", update, opts.MinimumUpdate())
			fmt.Fprintln(out, renderTable([]string{"ITEM", "KIND", "SAVER", "ACTION", "TARGET"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "扫描目录时排除的子目录（相对输入目录）")
	cmd.Flags().StringVar(&updateFlag, "update-kind", "", "触发保存的更新类型（默认取清单值，否则 metadata_edit）")
	return cmd
}
