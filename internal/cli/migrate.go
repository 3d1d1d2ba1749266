package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"example.com/carbon/internal/config"
	"example.com/carbon/internal/store"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			if cfg.StoreDriver != config.StoreDriverPostgres {
				return fmt.Errorf("migrate requires STORE_DRIVER=%s, got %q", config.StoreDriverPostgres, cfg.StoreDriver)
			}
			cfg.AutoMigrate = true

			st, err := store.Open(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}
