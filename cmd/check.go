package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
	"github.com/refguard/refguard/pkg/checker"
	"github.com/refguard/refguard/pkg/logger"
	"github.com/refguard/refguard/pkg/manifest"
	"github.com/refguard/refguard/pkg/telemetry"
	"github.com/refguard/refguard/pkg/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <sql-file>...",
	Short: "Check SQL scripts for bare table references",
	Long: `Check SQL scripts for table references that bypass the source() and
ref() indirection macros.

Every file is checked independently; a file that fails to parse is
reported and the remaining files are still checked. The command exits
non-zero when any file has a bare table reference or fails to parse.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Flags for check command
	checkCmd.Flags().StringP("dialect", "d", "ansi", "SQL dialect (ansi, postgres, snowflake, mysql, mariadb, tidb)")
	checkCmd.Flags().StringP("output", "o", "text", "output format (text, json, yaml)")
	checkCmd.Flags().Bool("ignore-dotless-table", false, "do not report single-part (schema-less) table names")
}

func runCheck(cmd *cobra.Command, args []string) error {
	// Bind flags to viper. Done here, not in init, so the keys resolve to
	// this command's flags and not a sibling's.
	_ = viper.BindPFlag("dialect", cmd.Flags().Lookup("dialect"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("ignore-dotless-table", cmd.Flags().Lookup("ignore-dotless-table"))

	log := newLoggerFromFlags()

	dialect, err := parseDialect(viper.GetString("dialect"))
	if err != nil {
		return err
	}
	slog.Debug("dialect parsed", "dialect", dialect)

	m, err := manifest.Load(viper.GetString("manifest"))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	slog.Debug("manifest loaded", "nodes", len(m.Nodes), "sources", len(m.Sources))

	opts := []checker.Option{checker.WithResolver(m)}
	if viper.GetBool("ignore-dotless-table") {
		opts = append(opts, checker.WithIgnoreDotlessTables())
	}

	ctx := context.Background()
	start := time.Now()
	run := checker.New(dialect, opts...).CheckFiles(ctx, args)
	elapsed := time.Since(start)

	if err := outputRun(run, viper.GetString("output")); err != nil {
		return err
	}

	tracker := telemetry.New(viper.GetString("telemetry-endpoint"), log)
	tracker.TrackHookEvent(ctx, "check", "Check the script has no table name.", run.Status(), elapsed, m)

	if run.Status() != 0 {
		os.Exit(run.Status())
	}
	return nil
}

func newLoggerFromFlags() *logger.Logger {
	logLevel := slog.LevelWarn
	if viper.GetBool("debug") {
		logLevel = slog.LevelDebug
	} else if viper.GetBool("verbose") {
		logLevel = slog.LevelInfo
	}
	log := logger.NewWithLevel(logLevel)
	slog.SetDefault(log.GetSlogLogger())
	return log
}

func parseDialect(name string) (types.Dialect, error) {
	dialect, ok := types.ParseDialect(name)
	if !ok {
		return types.Dialect_DIALECT_UNSPECIFIED, errors.Errorf("unsupported SQL dialect: %s", name)
	}
	return dialect, nil
}

// fileReport is the serializable view of a per-file result.
type fileReport struct {
	File       string   `json:"file" yaml:"file"`
	BareTables []string `json:"bareTables,omitempty" yaml:"bareTables,omitempty"`
	Error      string   `json:"error,omitempty" yaml:"error,omitempty"`
}

func reportsFromRun(run *checker.RunResult) []fileReport {
	reports := make([]fileReport, 0, len(run.Results))
	for _, result := range run.Results {
		report := fileReport{File: result.File, BareTables: result.BareTables}
		if result.Err != nil {
			report.Error = result.Err.Error()
		}
		reports = append(reports, report)
	}
	return reports
}

func outputRun(run *checker.RunResult, format string) error {
	switch format {
	case "json":
		return outputJSON(run)
	case "yaml":
		return outputYAML(run)
	case "text":
		return outputText(run)
	default:
		return errors.Errorf("unsupported output format: %s", format)
	}
}

func outputJSON(run *checker.RunResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]interface{}{
		"results": reportsFromRun(run),
		"summary": run.Summary,
	})
}

func outputYAML(run *checker.RunResult) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	return encoder.Encode(map[string]interface{}{
		"results": reportsFromRun(run),
		"summary": run.Summary,
	})
}

func outputText(run *checker.RunResult) error {
	for _, result := range run.Results {
		switch {
		case result.Err != nil:
			fmt.Printf("%s: %v\n", text.FgRed.Sprint(result.File), result.Err)
		case len(result.BareTables) > 0:
			fmt.Printf("%s: uses bare table name(s):\n", text.FgRed.Sprint(result.File))
			fmt.Printf("  %s\n", text.FgYellow.Sprint(strings.Join(result.BareTables, ", ")))
		}
	}

	if run.IsClean() {
		fmt.Println("No bare table references found.")
	}
	fmt.Println(run.String())
	return nil
}
