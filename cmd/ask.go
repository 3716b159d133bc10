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

var showSQL bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one natural-language question and exit",
	Long: `Translates the question into a SQL WHERE clause over the configured
table, executes the bounded query, and prints the matching values.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, db, err := setupAgent(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		question := strings.Join(args, " ")
		sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		sp.Suffix = " translating question..."
		sp.Start()
		result := a.Ask(ctx, question)
		sp.Stop()

		printResult(result)
		if !result.OK() {
			return fmt.Errorf("question failed: %s", result.Err.Msg)
		}
		return nil
	},
}

func printResult(r *agent.Result) {
	if showSQL && r.SQL != "" {
		fmt.Printf("SQL: %s\n", r.SQL)
	}
	if !r.OK() {
		fmt.Printf("Error (%s): %s\n", r.Err.Kind, r.Err.Msg)
		return
	}
	if len(r.Values) == 0 {
		fmt.Println("No matching rows.")
		return
	}
	fmt.Printf("Results (%d):\n", len(r.Values))
	for _, v := range r.Values {
		fmt.Printf("  %s\n", v.String())
	}
}

func init() {
	askCmd.Flags().BoolVar(&showSQL, "show-sql", false, "Print the executed SQL statement")
	rootCmd.AddCommand(askCmd)
}
