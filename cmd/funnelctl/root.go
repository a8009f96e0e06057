package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"provider-funnel/internal/common/config"
	"provider-funnel/internal/common/database"
	"provider-funnel/internal/common/logger"
	"provider-funnel/internal/funnel"
	"provider-funnel/internal/funnel/controller"
	"provider-funnel/internal/funnel/store"
	"provider-funnel/internal/providers"

	"github.com/spf13/cobra"
)

const app = "funnelctl"

type rootFlags struct {
	dbPath    string
	providers string
	session   string
	debug     bool
	json      bool
}

// env is what every subcommand works against: a local SQLite answer slot and
// a provider file.
type env struct {
	flags   *rootFlags
	db      *database.SQLiteClient
	service *funnel.Service
	out     io.Writer
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:           app,
		Short:         "funnelctl walks the provider matching funnel from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&f.dbPath, "db", filepath.Join(".funnel", "answers.db"), "sqlite file holding saved answers")
	cmd.PersistentFlags().StringVar(&f.providers, "providers", filepath.Join("configs", "providers.yaml"), "provider list (.yaml or .xlsx)")
	cmd.PersistentFlags().StringVarP(&f.session, "session", "s", "local", "session the answers are saved under")
	cmd.PersistentFlags().BoolVarP(&f.debug, "debug", "d", false, "verbose/debug output")
	cmd.PersistentFlags().BoolVarP(&f.json, "json", "j", false, "print JSON instead of tables")

	cmd.AddCommand(
		categoriesCmd(),
		statusCmd(f),
		runCmd(f),
		answerCmd(f),
		scoreCmd(f),
		resetCmd(f),
		activitiesCmd(),
	)
	return cmd
}

// withEnv opens the local stores, runs fn and closes them again.
func withEnv(cmd *cobra.Command, f *rootFlags, fn func(ctx context.Context, e *env) error) error {
	level := "warn"
	if f.debug {
		level = "debug"
	}
	log := logger.NewStructured(level, "console")

	db, err := database.NewSQLite(config.SQLiteConfig{Path: f.dbPath})
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	slot, err := store.NewSQLiteSlot(ctx, db.DB)
	if err != nil {
		return err
	}
	src, err := providers.NewFileSource(f.providers)
	if err != nil {
		return err
	}

	return fn(ctx, &env{
		flags: f,
		db:    db,
		service: &funnel.Service{
			Store:     store.New(slot, log),
			Providers: src,
			Logger:    log,
		},
		out: cmd.OutOrStdout(),
	})
}

func (e *env) open(ctx context.Context, category string) (*controller.Controller, error) {
	return e.service.Open(ctx, e.flags.session, "", category)
}

func (e *env) printJSON(v interface{}) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (e *env) printf(format string, args ...interface{}) {
	fmt.Fprintf(e.out, format, args...)
}
