package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/lychee-technology/notionmap/internal"
	"github.com/lychee-technology/notionmap/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagHead   int
	flagTail   int
	flagCSV    bool
	flagIndex  string
	flagExport string
)

var viewCmd = &cobra.Command{
	Use:   "view <id|url>",
	Short: "Print the rows of a database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := sess.GetDB(ctx, args[0], true)
		if err != nil {
			return err
		}
		view, err := sess.QueryDB(ctx, db)
		if err != nil {
			return err
		}
		if view, err = shape(view, cmd.Flags().Changed("index")); err != nil {
			return err
		}

		if flagExport != "" {
			return export(cmd, view)
		}
		if flagCSV {
			return view.WriteCSV(cmd.OutOrStdout())
		}
		return view.WriteTable(cmd.OutOrStdout())
	},
}

func shape(view *model.View, indexed bool) (*model.View, error) {
	if indexed {
		withIndex, err := view.WithIndex(flagIndex)
		if err != nil {
			return nil, err
		}
		view = withIndex
	}
	if flagHead > 0 {
		view = view.Head(flagHead)
	}
	if flagTail > 0 {
		view = view.Tail(flagTail)
	}
	return view, nil
}

// export uploads the view as CSV to the s3:// location given by --export.
func export(cmd *cobra.Command, view *model.View) error {
	bucket, key, err := internal.ParseS3URI(flagExport)
	if err != nil {
		return err
	}
	exportCfg := cfg.Export
	exportCfg.Bucket = bucket
	exportCfg.Prefix = ""

	var exporter *internal.S3Exporter
	if accessKey := os.Getenv("AWS_ACCESS_KEY_ID"); accessKey != "" {
		exporter, err = internal.NewStaticS3Exporter(cmd.Context(), exportCfg, accessKey, os.Getenv("AWS_SECRET_ACCESS_KEY"), zap.L())
	} else {
		exporter, err = internal.NewS3Exporter(cmd.Context(), exportCfg, zap.L())
	}
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := view.WriteCSV(&buf); err != nil {
		return err
	}
	location, err := exporter.Export(cmd.Context(), key, "text/csv", &buf)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", view.Len(), location)
	return nil
}

func init() {
	viewCmd.Flags().IntVar(&flagHead, "head", 0, "only the first n rows")
	viewCmd.Flags().IntVar(&flagTail, "tail", 0, "only the last n rows")
	viewCmd.Flags().BoolVar(&flagCSV, "csv", false, "write CSV instead of a table")
	viewCmd.Flags().StringVar(&flagIndex, "index", model.DefaultIndexName, "prepend a row number column with this name")
	viewCmd.Flags().StringVar(&flagExport, "export", "", "upload the rows as CSV to s3://bucket/key")
}
