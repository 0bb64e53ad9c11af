package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gastromatic/sqlstate"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <schema> <table>",
	Short: "Render driver-ready statements for a reflected table",
	Long: `Render SELECT, INSERT, UPDATE, and DELETE statements for a reflected
table using its full column set. UPDATE and DELETE are keyed on the
table's primary key and are omitted for tables without one.`,
	Args: cobra.ExactArgs(2),
	RunE: runSQL,
}

func init() {
	rootCmd.AddCommand(sqlCmd)
}

func runSQL(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()

	stmt, err := tbl.SelectSQL()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "-- select\n%s;\n\n", stmt)

	stmt, err = tbl.InsertSQL()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "-- insert\n%s;\n\n", stmt)

	stmt, err = tbl.UpdateSQL()
	switch {
	case errors.Is(err, sqlstate.ErrNoPrimaryKey):
		fmt.Fprintf(out, "-- update: skipped, no primary key\n\n")
	case err != nil:
		return err
	default:
		fmt.Fprintf(out, "-- update\n%s;\n\n", stmt)
	}

	stmt, err = tbl.DeleteSQL()
	switch {
	case errors.Is(err, sqlstate.ErrNoPrimaryKey):
		fmt.Fprintf(out, "-- delete: skipped, no primary key\n")
	case err != nil:
		return err
	default:
		fmt.Fprintf(out, "-- delete\n%s;\n", stmt)
	}

	return nil
}
