// Command dayboardctl is the operator CLI: account bootstrap, tokens,
// sample data and transport checks.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukerupert/dayboard/internal/config"
	"github.com/dukerupert/dayboard/internal/database"
)

var Version = "dev"

type app struct {
	envFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "dayboardctl",
		Short:         "Dayboard operator tools",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env", ".env", "path to a .env file")

	rootCmd.AddCommand(a.seedAdminCmd())
	rootCmd.AddCommand(a.makeAdminCmd())
	rootCmd.AddCommand(a.deleteUserCmd())
	rootCmd.AddCommand(a.tokenCmd())
	rootCmd.AddCommand(a.seedDemoCmd())
	rootCmd.AddCommand(a.setStatusCmd())
	rootCmd.AddCommand(a.sendTestCmd())
	rootCmd.AddCommand(a.verifyEmailCmd())
	rootCmd.AddCommand(a.digestCmd())
	return rootCmd
}

func (a *app) open() (*config.Config, *sql.DB, error) {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, db, nil
}
