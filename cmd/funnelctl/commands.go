package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"provider-funnel/internal/funnel"
	"provider-funnel/internal/funnel/catalog"
	"provider-funnel/internal/funnel/controller"
	"provider-funnel/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories that have a funnel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"ID", "Name", "Questions"})
			for _, c := range catalog.Categories() {
				cat, err := catalog.Get(c.ID)
				if err != nil {
					return err
				}
				closure := len(cat.Closure())
				asked := len(cat.Questions(models.AnswerSet{}))
				count := strconv.Itoa(asked)
				if closure != asked {
					count = fmt.Sprintf("%d-%d", asked, closure)
				}
				tw.AppendRow(table.Row{c.ID, c.Name, count})
			}
			tw.Render()
			return nil
		},
	}
}

func statusCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status <category>",
		Short: "Show the saved answers and the next question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, f, func(ctx context.Context, e *env) error {
				c, err := e.open(ctx, args[0])
				if err != nil {
					return err
				}
				defer c.Close()
				return e.renderSnapshot(c.Snapshot())
			})
		},
	}
}

func answerCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "answer <category> <question> <value>",
		Short: "Record one answer without prompting",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, f, func(ctx context.Context, e *env) error {
				c, err := e.open(ctx, args[0])
				if err != nil {
					return err
				}
				defer c.Close()
				snap, err := e.service.Submit(ctx, c, args[1], args[2])
				if err != nil {
					return err
				}
				return e.renderSnapshot(snap)
			})
		},
	}
}

func scoreCmd(f *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "score <category>",
		Short: "Rank providers against the saved answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, f, func(ctx context.Context, e *env) error {
				c, err := e.open(ctx, args[0])
				if err != nil {
					return err
				}
				answers := c.Answers()
				c.Close()
				return e.score(ctx, args[0], answers, limit)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum providers to show, 0 for all")
	return cmd
}

func resetCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <category>",
		Short: "Discard the saved answers for a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, f, func(ctx context.Context, e *env) error {
				c, err := e.open(ctx, args[0])
				if err != nil {
					return err
				}
				defer c.Close()
				if _, err := c.Reset(ctx); err != nil {
					return err
				}
				e.printf("answers for %s cleared\n", args[0])
				return nil
			})
		},
	}
}

func (e *env) score(ctx context.Context, category string, answers models.AnswerSet, limit int) error {
	ranked, err := e.service.Results(ctx, category, answers)
	if err != nil {
		return err
	}
	matches := len(ranked)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if e.flags.json {
		return e.printJSON(map[string]interface{}{
			"category":   category,
			"answers":    answers,
			"results":    ranked,
			"matchCount": matches,
		})
	}
	if matches == 0 {
		e.printf("no providers match these answers\n")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(e.out)
	tw.AppendHeader(table.Row{"#", "Provider", "Score", "Featured", "Rating", "Phone"})
	for i, r := range ranked {
		rating := "-"
		if r.Provider.HasRating() {
			rating = strconv.FormatFloat(*r.Provider.Rating, 'f', 1, 64)
		}
		featured := ""
		if r.Provider.Featured {
			featured = "yes"
		}
		tw.AppendRow(table.Row{i + 1, r.Provider.Name, fmt.Sprintf("%.2f", r.Score), featured, rating, r.Provider.Phone})
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d/%d", len(ranked), matches)})
	tw.Render()
	return nil
}

func (e *env) renderSnapshot(snap controller.Snapshot) error {
	if e.flags.json {
		return e.printJSON(funnel.VariablesFrom(snap))
	}
	e.printf("%s: %s (%d/%d answered)\n", snap.Category.Name, snap.State, snap.Answered, snap.Total)

	tw := table.NewWriter()
	tw.SetOutputMirror(e.out)
	tw.AppendHeader(table.Row{"Question", "Answer"})
	for _, q := range snap.Questions {
		answer := snap.Answers[q.ID]
		if opt, ok := q.Option(answer); ok {
			answer = opt.Label
		}
		tw.AppendRow(table.Row{q.Prompt, answer})
	}
	tw.Render()

	if snap.Current != nil {
		e.printf("next: %s (%s)\n", snap.Current.ID, snap.Current.Prompt)
	}
	return nil
}

// stdinIsTerminal reports whether prompts can be shown.
func stdinIsTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
