package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/seuros/salesboard/internal/client"
	"github.com/seuros/salesboard/internal/config"
	"github.com/seuros/salesboard/internal/export"
	"github.com/seuros/salesboard/internal/logging"
	"github.com/seuros/salesboard/internal/query"
	"github.com/seuros/salesboard/internal/store"
)

var (
	reportStart     string
	reportEnd       string
	reportCountries []string
	reportProduct   string
	reportFormat    string
	reportServer    string
)

// reportRunner is satisfied by the local query runner and the HTTP client.
type reportRunner interface {
	Run(ctx context.Context, name string, f query.Filter) (any, error)
}

var reportCmd = &cobra.Command{
	Use:   "report <name>",
	Short: "Run a report",
	Long: `Run one report against the local data source or a remote server.

Run "salesboard reports" for the list of report names.

Examples:
  salesboard report sales --country US --country Germany
  salesboard report trends --start 2024-01-01 --end 2024-06-30 -f json
  salesboard report top_customers --server http://reports:8000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		report, err := query.Lookup(name)
		if err != nil {
			return err
		}

		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}

		f, err := query.ParseFilter(reportStart, reportEnd, reportCountries, reportProduct)
		if errors.Is(err, query.ErrInvalidDate) {
			logging.L().Warn("invalid date filter, printing empty report",
				zap.String("report", name),
				zap.Error(err),
			)
			return export.Write(os.Stdout, format, report.Empty())
		}
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

		result, err := runner.Run(ctx, name, f)
		if err != nil {
			return fmt.Errorf("failed to run %s: %w", name, err)
		}
		return export.Write(os.Stdout, format, result)
	},
}

// outputFormat resolves --format. Without the flag, terminals get a table
// and pipes get CSV.
func outputFormat(cmd *cobra.Command) (export.Format, error) {
	if cmd.Flags().Changed("format") {
		return export.ParseFormat(reportFormat)
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

// newReportRunner returns a remote runner when a server URL is configured,
// otherwise a runner over a freshly loaded local snapshot.
func newReportRunner(ctx context.Context, cfg *config.Config, server string) (reportRunner, func(), error) {
	if server == "" {
		server = cfg.ServerURL
	}
	if server != "" {
		return client.New(server, cfg.RequestTimeout), func() {}, nil
	}

	source, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	holder := store.NewHolder(source)
	if _, err := holder.Reload(ctx); err != nil {
		closeSource()
		return nil, nil, err
	}
	return query.NewRunner(holder), closeSource, nil
}

func addReportFlags(cmd *cobra.Command, withFilter bool) {
	if withFilter {
		cmd.Flags().StringVar(&reportStart, "start", "", "Start of the date range (inclusive)")
		cmd.Flags().StringVar(&reportEnd, "end", "", "End of the date range (inclusive)")
		cmd.Flags().StringSliceVar(&reportCountries, "country", nil, "Country filter; repeatable, accepts codes or names")
		cmd.Flags().StringVar(&reportProduct, "product", "", "Product filter")
	}
	cmd.Flags().StringVarP(&reportFormat, "format", "f", "table", "Output format (table, json, csv, yaml)")
	cmd.Flags().StringVar(&reportServer, "server", "", "Fetch from a running server instead of loading data locally")
}

func init() {
	addReportFlags(reportCmd, true)
	RootCmd.AddCommand(reportCmd)
}
