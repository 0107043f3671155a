package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"meeting-insights-go/internal/analyzer"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		text         string
		skipCustomer bool
	)
	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Analyze one document and print the result as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" && len(args) == 0 {
				return fmt.Errorf("pass a file, - for stdin, or --text")
			}
			if text == "" {
				var err error
				if text, err = readDocument(cmd.InOrStdin(), args[0]); err != nil {
					return err
				}
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("document is empty")
			}

			a, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			tmpl, err := a.template(opts.templateID)
			if err != nil {
				return err
			}
			res := a.analyzer.Analyze(cmd.Context(), text, tmpl, analyzer.Options{SkipCustomerInfo: skipCustomer})

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Document text (instead of a file)")
	cmd.Flags().BoolVar(&skipCustomer, "skip-customer", false, "Skip customer name and meeting date extraction")
	return cmd
}

func readDocument(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(b), nil
}
