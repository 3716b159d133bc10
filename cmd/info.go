package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show connection settings and verify database reachability",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := setupDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Println("Connection:")
		fmt.Printf("  Dialect:  %s\n", cfg.Database.Dialect)
		if cfg.Database.Path != "" {
			fmt.Printf("  Path:     %s\n", cfg.Database.Path)
		} else if cfg.Database.CloudSQLInstanceConnectionName != "" {
			fmt.Printf("  Instance: %s\n", cfg.Database.CloudSQLInstanceConnectionName)
		} else {
			fmt.Printf("  Host:     %s:%d\n", cfg.Database.Host, cfg.Database.Port)
		}
		fmt.Printf("  Database: %s\n", cfg.Database.DBName)
		fmt.Printf("  User:     %s\n", cfg.Database.User)
		fmt.Println("Agent:")
		fmt.Printf("  Table:    %s\n", cfg.Agent.Table)
		fmt.Printf("  Column:   %s\n", cfg.Agent.Column)
		fmt.Printf("  Limit:    %d\n", cfg.Agent.MaxResults)
		fmt.Println("Backend:")
		if cfg.HasBackend() {
			fmt.Printf("  Backend:  %s\n", cfg.LLM.Backend)
			fmt.Printf("  Model:    %s\n", cfg.LLM.Model)
		} else {
			fmt.Println("  (none configured; natural-language queries disabled)")
		}

		if err := db.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		fmt.Println("Database connection OK.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
