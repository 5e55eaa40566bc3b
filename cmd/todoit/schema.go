package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hipotures/todoit/internal/storage/sqlite"
	"github.com/hipotures/todoit/internal/ui"
)

var schemaCmd = &cobra.Command{
	Use:     "schema",
	Short:   "Print the database schema",
	Long:    "Print the DDL used for new databases. --migrations lists the registered schema migrations instead.",
	GroupID: "data",
	RunE: func(cmd *cobra.Command, args []string) error {
		migrations, _ := cmd.Flags().GetBool("migrations")

		if migrations {
			infos := sqlite.ListMigrations()
			return emitResult(infos, func() string {
				if len(infos) == 0 {
					return "No migrations registered."
				}
				rows := make([][]string, 0, len(infos))
				for _, m := range infos {
					rows = append(rows, []string{m.Name, m.Description})
				}
				return ui.RenderTable([]string{"Migration", "Description"}, rows)
			}, nil)
		}

		ddl := sqlite.Schema()
		if structuredOutput() {
			return emitResult(map[string]string{"schema": ddl}, nil, nil)
		}
		fmt.Println(ddl)
		return nil
	},
}

func init() {
	schemaCmd.Flags().Bool("migrations", false, "list registered migrations")

	rootCmd.AddCommand(schemaCmd)
}
