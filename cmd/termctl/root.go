package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/bootstrap"
	"github.com/yigit/termsched/internal/config"
)

// operator is the identity termctl acts under for catalog changes
var operator = models.Actor{UserID: 1, Role: models.RoleAdmin}

type app struct {
	configPath string
	cfg        *config.Config
	log        zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "termctl",
		Short:         "Operator tool for the termsched service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = lgr
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", bootstrap.DefaultConfigPath, "path to the YAML configuration")

	root.AddCommand(
		newMigrateCmd(a),
		newRegenerateCmd(a),
		newImportSlotsCmd(a),
		newTokenCmd(a),
		newSeedCmd(a),
	)
	return root
}

// withDeps opens storage, builds the services and releases storage afterwards
func (a *app) withDeps(ctx context.Context, fn func(ctx context.Context, deps *bootstrap.Dependencies) error) error {
	storage, err := bootstrap.OpenStorage(a.cfg, a.log)
	if err != nil {
		return err
	}
	defer storage.Close()

	return fn(ctx, bootstrap.BuildDependencies(a.cfg, storage, a.log))
}

func (a *app) requirePostgres() error {
	if a.cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("this command needs the %s driver, configured driver is %q", config.DriverPostgres, a.cfg.Database.Driver)
	}
	return nil
}
