package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRulesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the rules in the catalog",
		Long:  "List every active rule admitted by the risk level, in evaluation order.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd, v)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Title", "Category", "Risk", "Matcher", "Min"})

			shown := 0
			for _, r := range settings.Catalog.Rules() {
				if !settings.Config.MinRisk.Admits(r.Risk) {
					continue
				}
				t.AppendRow(table.Row{r.ID, r.Title, r.Category.Key(), r.Risk.Key(), r.Matcher.Kind(), max(r.MinOccurrences, 1)})
				shown++
			}
			t.AppendFooter(table.Row{"", "", "", "", "Total", shown})
			t.Render()
			return nil
		},
	}
}
