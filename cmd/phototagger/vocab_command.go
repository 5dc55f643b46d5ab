package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"phototagger/internal/tagging"
	"phototagger/internal/vocab"
)

func newVocabCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "vocab [name]",
		Short: "Show the inference stages or the labels of one vocabulary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stages := tagging.StagesFromConfig(cfg)
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				fmt.Fprintln(out, renderStagesTable(stages))
				return nil
			}

			name := strings.ToLower(strings.TrimSpace(args[0]))
			for _, stage := range stages.All() {
				if stage.Name != name {
					continue
				}
				rows := make([][]string, 0, stage.Vocabulary.Len())
				for i, label := range stage.Vocabulary.Labels() {
					rows = append(rows, []string{fmt.Sprint(i + 1), label})
				}
				fmt.Fprintln(out, renderTitledTable(stage.Name, []string{"#", "Label"}, rows, []columnAlignment{alignRight, alignLeft}))
				return nil
			}
			return fmt.Errorf("unknown vocabulary %q (known: %s)", args[0], strings.Join(vocab.Names(), ", "))
		},
	}
}

func renderStagesTable(stages tagging.Stages) string {
	all := stages.All()
	rows := make([][]string, 0, len(all))
	for _, stage := range all {
		trigger := "always"
		if stage.Trigger != 0 {
			trigger = "genre: " + stage.Trigger.String()
		}
		rows = append(rows, []string{
			stage.Name,
			trigger,
			fmt.Sprint(stage.TopK),
			fmt.Sprintf("%.2f", stage.Threshold),
			fmt.Sprint(stage.Vocabulary.Len()),
		})
	}
	return renderTable(
		[]string{"Stage", "Runs", "Top K", "Threshold", "Labels"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
}
