package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:     "repl",
	Aliases: []string{"interactive"},
	Short:   "Interactive question loop against the configured table",
	Long: `Reads questions from standard input until EOF or "quit". A failed
question is reported and the loop continues; the session never dies on a
single bad answer.

Besides free-form questions the loop understands a few commands:

  schema            print the cached table schema
  columns           list the table's columns with descriptions
  tables            list the tables in the current snapshot
  refresh           re-introspect the table
  context <text>    set the domain context for subsequent prompts
  quit | exit       leave the loop`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, db, err := setupAgent(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Printf("Connected. Asking questions against table %q (answers from column %q).\n", cfg.Agent.Table, cfg.Agent.Column)
		fmt.Println(`Type a question, or "schema", "columns", "tables", "refresh", "context <text>", "quit".`)

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			switch {
			case line == "quit" || line == "exit":
				return scanner.Err()
			case line == "schema":
				fmt.Println(a.Snapshot().Render())
			case line == "columns":
				printColumnGuide(a)
			case line == "tables":
				for _, name := range a.Snapshot().TableNames() {
					fmt.Println(name)
				}
			case line == "refresh":
				if err := a.RefreshSchema(ctx); err != nil {
					fmt.Printf("Schema refresh failed: %v\n", err)
				} else {
					fmt.Println("Schema refreshed.")
				}
			case strings.HasPrefix(line, "context "):
				a.SetDomainContext(strings.TrimSpace(strings.TrimPrefix(line, "context ")))
				fmt.Println("Domain context updated.")
			default:
				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
				sp.Suffix = " translating question..."
				sp.Start()
				result := a.Ask(ctx, line)
				sp.Stop()
				printResult(result)
			}
		}
		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
