package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roamer",
	Short: "roamer generates random cycling routes of a requested length",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load(".env")
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("db-driver", "mysql", "database driver: mysql or postgres")
	rootCmd.PersistentFlags().String("dsn", "", "database DSN (default $DB_DSN)")
}

// dbFlags resolves the database flags, falling back to DB_DSN.
func dbFlags(cmd *cobra.Command) (driver, dsn string) {
	driver, _ = cmd.Flags().GetString("db-driver")
	dsn, _ = cmd.Flags().GetString("dsn")
	if dsn == "" {
		dsn = os.Getenv("DB_DSN")
	}
	return driver, dsn
}
