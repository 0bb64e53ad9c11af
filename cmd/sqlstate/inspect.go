package main

import (
	"encoding/json"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "List the reflected schemas",
	Args:  cobra.NoArgs,
	RunE:  runSchemas,
}

var tablesCmd = &cobra.Command{
	Use:   "tables <schema>",
	Short: "List the tables of a reflected schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runTables,
}

var columnsCmd = &cobra.Command{
	Use:   "columns <schema> <table>",
	Short: "Show the columns of a reflected table",
	Args:  cobra.ExactArgs(2),
	RunE:  runColumns,
}

func init() {
	rootCmd.AddCommand(schemasCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(columnsCmd)
}

func runSchemas(cmd *cobra.Command, args []string) error {
	state, cleanup, err := openState(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ns := state.S()

	if jsonOutput(cmd) {
		out := make([]map[string]any, 0, len(ns))
		for _, name := range ns.SchemaNames() {
			schema, err := ns.Schema(name)
			if err != nil {
				return err
			}
			out = append(out, map[string]any{
				"name":   name,
				"schema": schema.Name,
				"tables": len(schema.TableNames()),
			})
		}
		return renderJSON(cmd.OutOrStdout(), out)
	}

	t := newTableWriter(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Name", "Schema", "Tables"})
	for _, name := range ns.SchemaNames() {
		schema, err := ns.Schema(name)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{name, schema.Name, len(schema.TableNames())})
	}
	t.Render()
	return nil
}

func runTables(cmd *cobra.Command, args []string) error {
	state, cleanup, err := openState(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	schema, err := state.S().Schema(args[0])
	if err != nil {
		return err
	}

	if jsonOutput(cmd) {
		out := make([]map[string]any, 0, len(schema.TableNames()))
		for _, tbl := range schema.Tables() {
			out = append(out, map[string]any{
				"name":    tbl.Name,
				"is_view": tbl.IsView,
				"columns": len(tbl.Columns),
			})
		}
		return renderJSON(cmd.OutOrStdout(), out)
	}

	t := newTableWriter(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Table", "Kind", "Columns"})
	for _, tbl := range schema.Tables() {
		kind := "table"
		if tbl.IsView {
			kind = "view"
		}
		t.AppendRow(table.Row{tbl.Name, kind, len(tbl.Columns)})
	}
	t.Render()
	return nil
}

func runColumns(cmd *cobra.Command, args []string) error {
	state, cleanup, err := openState(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	schema, err := state.S().Schema(args[0])
	if err != nil {
		return err
	}
	tbl, err := schema.Table(args[1])
	if err != nil {
		return err
	}

	if jsonOutput(cmd) {
		return renderJSON(cmd.OutOrStdout(), tbl)
	}

	t := newTableWriter(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Column", "Type", "Nullable", "Default", "PK"})
	for _, c := range tbl.Columns {
		def := ""
		if c.Default != nil {
			def = *c.Default
		}
		pk := ""
		if c.IsPrimaryKey {
			pk = "✓"
		}
		t.AppendRow(table.Row{c.Name, c.DataType, c.Nullable, def, pk})
	}
	t.Render()
	return nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func renderJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func newTableWriter(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}
