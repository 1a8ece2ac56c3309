package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/refguard/refguard/pkg/checker"
	"github.com/refguard/refguard/pkg/manifest"
	"github.com/refguard/refguard/pkg/rewriter"
	"github.com/refguard/refguard/pkg/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <sql-file>...",
	Short: "Replace bare table references with source() or ref() macros",
	Long: `Rewrite SQL scripts in place, replacing bare table references with the
ref() or source() macro call that resolves to the same relation.

Models and sources are looked up in the project manifest. A reference
not found there but carrying a schema qualifier is rewritten to a
source() call guessed from the name; a bare single-part name is left
untouched and reported. The command exits non-zero when any file needed
rewriting, matching the checking command's contract.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFix,
}

func init() {
	rootCmd.AddCommand(fixCmd)

	fixCmd.Flags().StringP("dialect", "d", "ansi", "SQL dialect (ansi, postgres, snowflake, mysql, mariadb, tidb)")
	fixCmd.Flags().Bool("ignore-dotless-table", false, "do not rewrite single-part (schema-less) table names")
}

func runFix(cmd *cobra.Command, args []string) error {
	_ = viper.BindPFlag("dialect", cmd.Flags().Lookup("dialect"))
	_ = viper.BindPFlag("ignore-dotless-table", cmd.Flags().Lookup("ignore-dotless-table"))

	log := newLoggerFromFlags()

	dialect, err := parseDialect(viper.GetString("dialect"))
	if err != nil {
		return err
	}

	m, err := manifest.Load(viper.GetString("manifest"))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	opts := []checker.Option{checker.WithResolver(m)}
	if viper.GetBool("ignore-dotless-table") {
		opts = append(opts, checker.WithIgnoreDotlessTables())
	}

	chk := checker.New(dialect, opts...)
	rw := rewriter.New(m)

	ctx := context.Background()
	start := time.Now()
	status := 0
	for _, path := range args {
		result := chk.CheckFile(path)
		if result.Err != nil {
			fmt.Printf("%s: %v\n", text.FgRed.Sprint(path), result.Err)
			status = 1
			continue
		}
		if len(result.BareTables) == 0 {
			continue
		}
		status = 1

		plan := rw.Plan(result.BareTables)
		for _, rep := range plan.Replacements {
			if rep.Guessed {
				fmt.Printf("%s: %s not found in models or sources, replacing with %s\n",
					path, text.FgYellow.Sprint(rep.Table), rep.Macro)
			}
		}
		for _, table := range plan.Unresolved {
			fmt.Printf("%s: unable to replace table %s with ref or source\n",
				path, text.FgYellow.Sprint(table))
		}

		if err := rewriter.RewriteFile(path, plan); err != nil {
			fmt.Printf("%s: %v\n", text.FgRed.Sprint(path), err)
			continue
		}
		slog.Debug("file rewritten", "file", path, "replacements", len(plan.Replacements))
	}
	elapsed := time.Since(start)

	tracker := telemetry.New(viper.GetString("telemetry-endpoint"), log)
	tracker.TrackHookEvent(ctx, "fix", "Replace table names with source() or ref() macros in the script.", status, elapsed, m)

	if status != 0 {
		os.Exit(status)
	}
	return nil
}
