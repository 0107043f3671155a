package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"meeting-insights-go/internal/aggregator"
	"meeting-insights-go/internal/dataset"
	"meeting-insights-go/internal/export"
	"meeting-insights-go/internal/processor"
)

func newBatchCmd(opts *rootOptions) *cobra.Command {
	var (
		outDir       string
		format       string
		columns      []string
		skipCustomer bool
	)
	cmd := &cobra.Command{
		Use:   "batch <folder|file.xlsx|file>",
		Short: "Analyze a folder of notes or a spreadsheet and write an export",
		Long: "Documents come from .txt/.md files in a folder, from the rows of an .xlsx workbook, " +
			"or from a single text file. Results are written as xlsx (with a Summary sheet) or csv.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != export.FormatXLSX && format != export.FormatCSV {
				return fmt.Errorf("unsupported export format %q", format)
			}
			inputs, err := dataset.Load(args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}

			a, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			tmpl, err := a.template(opts.templateID)
			if err != nil {
				return err
			}
			res := a.processor.ProcessBatch(cmd.Context(), inputs, tmpl, processor.Options{
				SkipCustomerInfo: skipCustomer,
				ExportFormat:     format,
			})

			var buf bytes.Buffer
			if err := export.Write(&buf, format, tmpl, res.Results, columns); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(outDir, res.SpreadsheetFilename)
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "batch %s: %d/%d succeeded in %dms\n", res.BatchID, res.SuccessfulItems, res.TotalItems, res.ProcessingTimeMs)
			for _, c := range aggregator.Aggregate(tmpl, res.Results).Categories {
				top := "-"
				if len(c.Values) > 0 {
					top = fmt.Sprintf("%s (%d)", c.Values[0].Value, c.Values[0].Count)
				}
				fmt.Fprintf(out, "  %-20s extracted=%d failed=%d top=%s\n", c.CategoryName, c.Extracted, c.Failed, top)
			}
			fmt.Fprintln(out, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory for the export file")
	cmd.Flags().StringVar(&format, "format", export.FormatXLSX, "Export format: xlsx or csv")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to export (default: all)")
	cmd.Flags().BoolVar(&skipCustomer, "skip-customer", false, "Skip customer name and meeting date extraction")
	return cmd
}
