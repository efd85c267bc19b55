package cli

import (
	"github.com/spf13/cobra"

	"github.com/seuros/salesboard/internal/config"
)

var Version string

// overrides collects the persistent config flags.
var overrides config.Overrides

// RootCmd represents the root command
var RootCmd = &cobra.Command{
	Use:   "salesboard",
	Short: "Sales and marketing analytics",
	Long: `Salesboard - sales and marketing analytics over a combined event log.

Salesboard loads sale and web events from a CSV file or PostgreSQL and
serves aggregated reports over HTTP and on the command line.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	// Default to serve command if no subcommand provided
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runServe(cmd, args)
		}
		return cmd.Help()
	},
}

// Execute is called by main
func Execute(version string) error {
	Version = version
	RootCmd.Version = version
	return RootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	return config.LoadWithOverrides(overrides)
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&overrides.DataFile, "data-file", "", "CSV event log (default combined_data.csv)")
	flags.StringVar(&overrides.DatabaseURL, "database-url", "", "PostgreSQL connection string")
	flags.StringVar(&overrides.Source, "source", "", "Data source: csv or postgres")

	RootCmd.Version = Version
}
