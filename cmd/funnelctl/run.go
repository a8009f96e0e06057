package main

import (
	"context"
	"errors"
	"fmt"

	"provider-funnel/internal/funnel/controller"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

const (
	PromptResults   = "Show results"
	PromptStartOver = "Start over"
	PromptQuit      = "Quit"
)

func runCmd(f *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "run <category>",
		Short: "Answer the funnel interactively and rank providers at the end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !stdinIsTerminal() {
				return errors.New("run needs an interactive terminal, use answer and score instead")
			}
			return withEnv(cmd, f, func(ctx context.Context, e *env) error {
				c, err := e.open(ctx, args[0])
				if err != nil {
					return err
				}
				defer c.Close()

				done, err := e.walk(ctx, c)
				if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
					e.printf("progress saved, run again to continue\n")
					return nil
				}
				if err != nil || !done {
					return err
				}
				return e.score(ctx, args[0], c.Answers(), limit)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum providers to show, 0 for all")
	return cmd
}

// walk prompts for every open question until the funnel is complete. It
// returns false when the user quits.
func (e *env) walk(ctx context.Context, c *controller.Controller) (bool, error) {
	snap := c.Snapshot()
	if snap.State == controller.Complete {
		sel := promptui.Select{
			Label: fmt.Sprintf("%s is already answered", snap.Category.Name),
			Items: []string{PromptResults, PromptStartOver, PromptQuit},
		}
		_, choice, err := sel.Run()
		if err != nil {
			return false, err
		}
		switch choice {
		case PromptQuit:
			return false, nil
		case PromptStartOver:
			if snap, err = c.Reset(ctx); err != nil {
				return false, err
			}
		}
	}

	for snap.State != controller.Complete {
		q := snap.Current
		items := make([]string, 0, len(q.Options)+1)
		for _, o := range q.Options {
			items = append(items, o.Label)
		}
		if snap.Answered > 0 {
			items = append(items, PromptStartOver)
		}

		sel := promptui.Select{
			Label: fmt.Sprintf("[%d/%d] %s", snap.Index+1, snap.Total, q.Prompt),
			Items: items,
			Size:  len(items),
		}
		idx, _, err := sel.Run()
		if err != nil {
			return false, err
		}

		if idx >= len(q.Options) {
			snap, err = c.Reset(ctx)
		} else {
			snap, err = e.service.Submit(ctx, c, q.ID, q.Options[idx].Value)
		}
		if err != nil {
			return false, err
		}
	}
	return true, nil
}
