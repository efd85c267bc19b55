package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seuros/salesboard/internal/config"
	"github.com/seuros/salesboard/internal/database"
	"github.com/seuros/salesboard/internal/events"
)

const minPostgresMajor = 13

var errChecksFailed = errors.New("health checks failed")

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on the Salesboard setup",
	Long: `Run health checks on the Salesboard setup.

Checks performed:
  - Configuration valid
  - Data file readable and parseable (csv source)
  - Database connection
  - PostgreSQL version
  - Database migrations completed
  - Events table readable

Example:
  salesboard doctor
  salesboard doctor --json`,
	RunE: runDoctor,
}

type CheckResult struct {
	Name       string `json:"name"`
	Pass       bool   `json:"pass"`
	Error      string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Details    string `json:"details,omitempty"`
}

func checkConfiguration() (*config.Config, CheckResult) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, CheckResult{
			Name:       "Configuration",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Fix salesboard.toml or the environment variables",
		}
	}
	return cfg, CheckResult{Name: "Configuration", Pass: true, Details: "source " + cfg.Source}
}

func checkDataFile(cfg *config.Config) CheckResult {
	info, err := os.Stat(cfg.DataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Name:       "Data File",
				Pass:       false,
				Error:      cfg.DataFile + " not found",
				Suggestion: "Set DATA_FILE or pass --data-file",
			}
		}
		return CheckResult{Name: "Data File", Pass: false, Error: err.Error()}
	}

	_, stats, err := events.LoadFile(cfg.DataFile)
	if err != nil {
		return CheckResult{
			Name:       "Data File",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Check the CSV header and delimiter",
		}
	}

	return CheckResult{
		Name:    "Data File",
		Pass:    true,
		Details: fmt.Sprintf("%d rows, %d skipped, %.1f MB", stats.Rows, stats.Skipped, float64(info.Size())/(1024*1024)),
	}
}

func checkDatabaseConnection(db *sql.DB) CheckResult {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return CheckResult{
			Name:       "Database Connection",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Verify DATABASE_URL and ensure PostgreSQL is running",
		}
	}
	return CheckResult{Name: "Database Connection", Pass: true}
}

func checkPostgreSQLVersion(db *sql.DB) CheckResult {
	var version string
	err := db.QueryRow("SHOW server_version").Scan(&version)
	if err != nil {
		return CheckResult{Name: "PostgreSQL Version", Pass: false, Error: err.Error()}
	}

	// e.g. "17.1 (Debian 17.1-1)"
	parts := strings.Split(version, " ")
	major, _ := strconv.Atoi(strings.Split(parts[0], ".")[0])

	if major < minPostgresMajor {
		return CheckResult{
			Name:       "PostgreSQL Version",
			Pass:       false,
			Error:      fmt.Sprintf("Version %s found, need ≥%d", parts[0], minPostgresMajor),
			Suggestion: fmt.Sprintf("Upgrade PostgreSQL to version %d or higher", minPostgresMajor),
		}
	}
	return CheckResult{Name: "PostgreSQL Version", Pass: true, Details: parts[0]}
}

func checkMigrations(cfg *config.Config) CheckResult {
	version, dirty, err := database.MigrationVersion(cfg.DatabaseURL)
	if err != nil {
		return CheckResult{
			Name:       "Database Migrations",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Run migrations with: salesboard migrate",
		}
	}

	expected, err := database.LatestMigration()
	if err != nil {
		return CheckResult{Name: "Database Migrations", Pass: false, Error: err.Error()}
	}
	if version != expected {
		return CheckResult{
			Name:       "Database Migrations",
			Pass:       false,
			Error:      fmt.Sprintf("Migration version %d, expected %d", version, expected),
			Suggestion: "Run migrations with: salesboard migrate",
		}
	}

	if dirty {
		return CheckResult{
			Name:       "Database Migrations",
			Pass:       false,
			Error:      "Migration state is dirty",
			Suggestion: "Fix dirty migration state, may need manual intervention",
		}
	}

	return CheckResult{Name: "Database Migrations", Pass: true, Details: fmt.Sprintf("v%d", version)}
}

func checkEventsTable(db *sql.DB) CheckResult {
	var count int64
	if err := db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		return CheckResult{
			Name:       "Events Table",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Run migrations, then load data with: salesboard import <csv>",
		}
	}
	return CheckResult{Name: "Events Table", Pass: true, Details: fmt.Sprintf("%d rows", count)}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	results := runChecks()

	if jsonOutput {
		outputDoctorJSON(results)
	} else {
		outputDoctorHuman(results)
	}

	for _, r := range results {
		if !r.Pass {
			return errChecksFailed
		}
	}
	return nil
}

func runChecks() []CheckResult {
	cfg, result := checkConfiguration()
	results := []CheckResult{result}
	if cfg == nil {
		return results
	}

	if cfg.Source == config.SourceCSV {
		results = append(results, checkDataFile(cfg))
	}
	if cfg.DatabaseURL == "" {
		return results
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return append(results, CheckResult{
			Name:       "Database Connection",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Verify DATABASE_URL is valid",
		})
	}
	defer func() { _ = db.Close() }()

	conn := checkDatabaseConnection(db)
	results = append(results, conn)
	if !conn.Pass {
		return results
	}
	results = append(results, checkPostgreSQLVersion(db))
	results = append(results, checkMigrations(cfg))
	results = append(results, checkEventsTable(db))
	return results
}

func outputDoctorHuman(results []CheckResult) {
	fmt.Println("\nSalesboard Health Check")

	for _, r := range results {
		icon := "✓"
		if !r.Pass {
			icon = "✗"
		}

		fmt.Printf("%s %s", icon, r.Name)
		if r.Details != "" {
			fmt.Printf(" (%s)", r.Details)
		}
		fmt.Println()

		if !r.Pass {
			if r.Error != "" {
				fmt.Printf("  Error: %s\n", r.Error)
			}
			if r.Suggestion != "" {
				fmt.Printf("  Hint: %s\n", r.Suggestion)
			}
		}
	}

	passed := 0
	for _, r := range results {
		if r.Pass {
			passed++
		}
	}

	fmt.Printf("\n%d/%d checks passed\n\n", passed, len(results))
}

func outputDoctorJSON(results []CheckResult) {
	data, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(data))
}

func init() {
	doctorCmd.Flags().Bool("json", false, "Output results as JSON")
	RootCmd.AddCommand(doctorCmd)
}
