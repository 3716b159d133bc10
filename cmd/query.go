package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/agent"
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Generate and run a full SQL query across all tables",
	Long: `Unlike "ask", which only varies the WHERE clause of a fixed query,
"query" lets the model write the whole SELECT statement against every table
it can see. The generated SQL is printed before the results so it can be
reviewed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := setupDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		completer := setupCompleter(ctx)
		a, err := agent.NewSQLAgent(ctx, db, completer, cfg.Agent, logger)
		if err != nil {
			return err
		}

		question := strings.Join(args, " ")
		sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		sp.Suffix = " generating SQL..."
		sp.Start()
		result := a.Ask(ctx, question)
		sp.Stop()

		if result.SQL != "" {
			fmt.Printf("SQL: %s\n", result.SQL)
		}
		if !result.OK() {
			return fmt.Errorf("query failed: %s", result.Err.Msg)
		}
		printRows(result.Columns, result.Rows)
		return nil
	},
}

func printRows(columns []string, rows [][]agent.Value) {
	if len(rows) == 0 {
		fmt.Println("No matching rows.")
		return
	}
	fmt.Println(strings.Join(columns, " | "))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		fmt.Println(strings.Join(cells, " | "))
	}
	fmt.Printf("(%d row(s))\n", len(rows))
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
