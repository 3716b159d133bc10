package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/schema"
	"github.com/askdb/askdb/internal/utils"
)

var (
	exportPath    string
	exportPackage string
	allTables     bool
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Introspect the database schema, print it, or export it as Go source",
	Long: `Introspects the configured table (or every reachable table with
--all) and prints the snapshot the agent embeds in its prompts. With --export
the snapshot is written out as a Go source file so it can be checked in and
diffed against later scans.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := setupDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		inspector := schema.NewInspector(db, cfg.Agent.SampleLimit, logger)
		var snap *schema.Snapshot
		if allTables || cfg.Agent.Table == "" {
			snap, err = inspector.BuildAllSnapshot(ctx, cfg.Database.Dialect)
		} else {
			snap, err = inspector.BuildSnapshot(ctx, cfg.Database.Dialect, cfg.Agent.Table)
		}
		if err != nil {
			return fmt.Errorf("schema introspection failed: %w", err)
		}

		if exportPath != "" {
			source := schema.ExportGo(snap, exportPackage)
			if err := utils.WriteStringToFile(exportPath, source); err != nil {
				return fmt.Errorf("failed to write schema export: %w", err)
			}
			logger.Infow("schema exported", "path", exportPath, "tables", snap.Len())
			fmt.Printf("Exported %d table(s) to %s\n", snap.Len(), exportPath)
			return nil
		}

		fmt.Println(snap.Render())
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&allTables, "all", false, "Introspect every reachable table, not just the configured one")
	schemaCmd.Flags().StringVar(&exportPath, "export", "", "Write the snapshot as Go source to this path instead of printing it")
	schemaCmd.Flags().StringVar(&exportPackage, "package", "schema", "Package name for the exported Go source")
	rootCmd.AddCommand(schemaCmd)
}
