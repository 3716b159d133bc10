package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/agent"
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List the configured table's columns with inferred descriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, db, err := setupAgent(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		printColumnGuide(a)
		return nil
	},
}

func printColumnGuide(a *agent.Agent) {
	table, err := a.DescribeTable(cfg.Agent.Table)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Columns of %s:\n", table.Name)
	for _, col := range table.Columns {
		nullable := "NOT NULL"
		if col.Nullable {
			nullable = "NULL"
		}
		fmt.Printf("  %-24s %-16s %-8s %s\n", col.Name, col.DeclaredType, nullable, col.Description)
	}
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}
