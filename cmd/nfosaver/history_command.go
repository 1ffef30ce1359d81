package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/NFOSaver/internal/journal"
)

type historyRow struct {
	ID        int64     `json:"id"`
	Session   string    `json:"session"`
	OpID      string    `json:"op_id"`
	Item      string    `json:"item"`
	Saver     string    `json:"saver"`
	Path      string    `json:"path"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	DryRun    bool      `json:"dry_run"`
	SHA256    string    `json:"content_sha256,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit  int
		path   string
		status string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "查看最近的保存记录（需要 --journal）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.journal == "" {
				return errors.New("history 需要 --journal 指定数据库路径")
			}
			j, err := journal.Open(ctx.journal)
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.Recent(cmd.Context(), journal.Query{Limit: limit, Path: path, Status: status})
			if err != nil {
				return fmt.Errorf("读取 journal 失败：%w", err)
			}

			rows := make([]historyRow, 0, len(entries))
			for _, e := range entries {
				reason := e.Skip
				if e.ErrorCode != "" {
					reason = e.ErrorCode + ": " + e.ErrorMsg
				}
				rows = append(rows, historyRow{
					ID:        e.ID,
					Session:   e.Session,
					OpID:      e.OpID,
					Item:      e.Item,
					Saver:     e.Saver,
					Path:      e.Path,
					Status:    e.Status,
					Reason:    reason,
					DryRun:    e.Detail.DryRun,
					SHA256:    e.Detail.ContentSHA256,
					CreatedAt: e.CreatedAt,
				})
			}

			if !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "没有记录")
				return nil
			}
			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				st := r.Status
				if r.DryRun {
					st += " (dry-run)"
				}
				table = append(table, []string{
					strconv.FormatInt(r.ID, 10),
					r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					st,
					r.Saver,
					r.Item,
					r.Path,
					truncate(r.Reason, 80),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "TIME", "STATUS", "SAVER", "ITEM", "PATH", "REASON"},
				table,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "最多显示多少条")
	cmd.Flags().StringVar(&path, "path", "", "只显示该 NFO 路径的记录")
	cmd.Flags().StringVar(&status, "status", "", "只显示该状态（saved|unchanged|skipped|failed）")
	return cmd
}
