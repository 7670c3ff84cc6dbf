package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending gallery store migrations",
	Long: `Apply pending schema migrations to the configured gallery store and list
the migrations recorded as applied. Other commands migrate on startup too;
this command only connects to the store.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	_, migrator, closeStore, err := openStore(cmd.Context(), &cfg.Database)
	if err != nil {
		return fmt.Errorf("opening gallery store: %w", err)
	}
	defer closeStore()

	if err := migrator.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	applied, err := migrator.MigrationsApplied(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	fmt.Printf("Applied migrations (%s):\n", cfg.Database.Driver)
	for _, name := range applied {
		fmt.Printf("  %s\n", name)
	}
	return nil
}
