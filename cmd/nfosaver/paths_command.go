package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/paths"
)

type pathsRow struct {
	Item       string          `json:"item"`
	Kind       domain.ItemKind `json:"kind"`
	Container  string          `json:"container,omitempty"`
	Mixed      bool            `json:"in_mixed_folder"`
	Candidates []string        `json:"candidates"`
}

func newPathsCommand(ctx *commandContext) *cobra.Command {
	var exclude []string

	cmd := &cobra.Command{
		Use:   "paths <dir|manifest.json>...",
		Short: "列出每个条目的 NFO 候选路径（不读写文件）",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows []pathsRow
			for _, arg := range args {
				in, err := loadInput(arg, exclude)
				if err != nil {
					return err
				}
				for _, it := range in.Items {
					cands := paths.Resolve(it)
					if cands == nil {
						cands = []string{}
					}
					rows = append(rows, pathsRow{
						Item:       it.Label(),
						Kind:       it.Kind,
						Container:  it.Container,
						Mixed:      it.IsInMixedFolder,
						Candidates: cands,
					})
				}
			}
			if rows == nil {
				rows = []pathsRow{}
			}

			if !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, rows)
			}
			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				table = append(table, []string{r.Item, string(r.Kind), strings.Join(r.Candidates, "\n")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ITEM", "KIND", "CANDIDATES"}, table, nil))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "扫描目录时排除的子目录（相对输入目录）")
	return cmd
}
