package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/lychee-technology/notionmap/model"
	"github.com/spf13/cobra"
)

var flagExact bool

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect databases",
}

var dbShowCmd = &cobra.Command{
	Use:   "show <id|url>",
	Short: "Print the columns of a database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := sess.GetDB(cmd.Context(), args[0], true)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if flagJSON {
			return json.NewEncoder(out).Encode(db.Obj())
		}
		fmt.Fprintf(out, "%s (%s)\n\n", db.Title(), db.ID())
		return writeColumns(cmd, db.Schema())
	},
}

var dbSearchCmd = &cobra.Command{
	Use:   "search [title]",
	Short: "Search databases by title",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := ""
		if len(args) == 1 {
			title = args[0]
		}
		dbs, err := sess.SearchDB(cmd.Context(), title, flagExact)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if flagJSON {
			objs := make([]any, 0, len(dbs))
			for _, db := range dbs {
				objs = append(objs, db.Obj())
			}
			return json.NewEncoder(out).Encode(objs)
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tCOLUMNS")
		for _, db := range dbs {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", db.ID(), db.Title(), len(db.Schema().ToDict()))
		}
		return tw.Flush()
	},
}

func writeColumns(cmd *cobra.Command, schema *model.PageSchema) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tREAD-ONLY")
	for _, col := range schema.ToDict() {
		fmt.Fprintf(tw, "%s\t%s\t%t\n", col.Name, col.Type.Tag(), col.Type.ReadOnly())
	}
	return tw.Flush()
}

func init() {
	dbSearchCmd.Flags().BoolVar(&flagExact, "exact", false, "only keep databases whose title matches exactly")
	dbCmd.AddCommand(dbShowCmd)
	dbCmd.AddCommand(dbSearchCmd)
}
