package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the reservation, guest and customer tables",
}

var schemaMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or extend the tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		if err := rt.store.Migrate(cmd.Context()); err != nil {
			return err
		}
		rt.logger.Info("Schema migrated")
		return nil
	},
}

var schemaCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report columns the database is missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		missing, err := rt.store.CheckSchema(cmd.Context())
		if err != nil {
			return err
		}
		if len(missing) == 0 {
			rt.logger.Info("Schema is up to date")
			return nil
		}

		tables := make([]string, 0, len(missing))
		for table := range missing {
			tables = append(tables, table)
		}
		slices.Sort(tables)
		for _, table := range tables {
			rt.logger.Warn("Missing columns",
				zap.String("table", table),
				zap.String("columns", strings.Join(missing[table], ", ")))
		}
		return fmt.Errorf("%d table(s) out of date, run 'schema migrate'", len(missing))
	},
}

func init() {
	schemaCmd.AddCommand(schemaMigrateCmd, schemaCheckCmd)
	RootCmd.AddCommand(schemaCmd)
}
