package migrate

import (
	"github.com/spf13/cobra"

	"github.com/mpapenbr/stintdeg/log"
	"github.com/mpapenbr/stintdeg/pkg/cmd/util"
	"github.com/mpapenbr/stintdeg/pkg/config"
	"github.com/mpapenbr/stintdeg/pkg/db/migrate"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration(cmd)
		},
	}
	return cmd
}

func startMigration(cmd *cobra.Command) error {
	if _, err := util.SetupLogger(); err != nil {
		return err
	}
	if err := util.WaitForDB(cmd.Context()); err != nil {
		return err
	}
	if err := migrate.MigrateDb(config.DB); err != nil {
		log.Error("Migration failed", log.ErrorField(err))
		return err
	}
	version, dirty, err := migrate.Version(config.DB)
	if err != nil {
		return err
	}
	log.Info("Database migrated", log.Uint("version", version), log.Bool("dirty", dirty))
	return nil
}
