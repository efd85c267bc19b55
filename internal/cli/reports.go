package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/seuros/salesboard/internal/countries"
	"github.com/seuros/salesboard/internal/export"
	"github.com/seuros/salesboard/internal/query"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List available reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		return export.Write(os.Stdout, format, query.Reports())
	},
}

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the countries present in the data",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		runner, closeRunner, err := newReportRunner(ctx, cfg, reportServer)
		if err != nil {
			return err
		}
		defer closeRunner()

		result, err := runner.Run(ctx, "countries", query.Filter{})
		if err != nil {
			return err
		}
		codes, _ := result.([]string)
		return export.Write(os.Stdout, format, describeCountries(codes))
	},
}

func init() {
	reportsCmd.Flags().StringVarP(&reportFormat, "format", "f", "table", "Output format (table, json, csv, yaml)")
	addReportFlags(countriesCmd, false)
	RootCmd.AddCommand(reportsCmd)
	RootCmd.AddCommand(countriesCmd)
}

// describeCountries pairs each code with its alpha-3 code and name.
func describeCountries(codes []string) []countries.Info {
	out := make([]countries.Info, 0, len(codes))
	for _, code := range codes {
		out = append(out, countries.Describe(code))
	}
	return out
}
