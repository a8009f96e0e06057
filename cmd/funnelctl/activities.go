package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	lf "provider-funnel/internal/workers/funnel/load-funnel"
	rf "provider-funnel/internal/workers/funnel/reset-funnel"
	sp "provider-funnel/internal/workers/funnel/score-providers"
	sa "provider-funnel/internal/workers/funnel/submit-answer"
	"provider-funnel/pkg/registry"

	"github.com/spf13/cobra"
)

func activityRegistry() *registry.ActivityRegistry {
	return registry.New(lf.Activity(), sa.Activity(), rf.Activity(), sp.Activity())
}

func activitiesCmd() *cobra.Command {
	var write, check string
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "Print, write or check the job worker activity registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			reg := activityRegistry()
			if err := reg.Validate(); err != nil {
				return err
			}

			switch {
			case check != "":
				have, err := registry.LoadRegistry(check)
				if err != nil {
					return fmt.Errorf("failed to load registry: %w", err)
				}
				if err := have.Validate(); err != nil {
					return fmt.Errorf("%s: %w", check, err)
				}
				if diff := have.Diff(reg); len(diff) > 0 {
					return fmt.Errorf("%s is out of date: %s", check, strings.Join(diff, ", "))
				}
				fmt.Fprintf(out, "%s is up to date (%d activities)\n", check, len(reg.Activities))
			case write != "":
				reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
				if err := reg.Save(write); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %d activities to %s\n", len(reg.Activities), write)
			default:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(reg)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&write, "write", "", "write the registry to this file")
	cmd.Flags().StringVar(&check, "check", "", "fail when this registry file differs from the workers")
	return cmd
}
