package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"tablediff/core/config"
	"tablediff/core/database"
	"tablediff/core/loader"
	"tablediff/core/logger"
	"tablediff/core/storage"
	"tablediff/feature/compare"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// Flags for the compare command
	compareLeft          string
	compareRight         string
	compareJoinColumns   []string
	compareAbsTol        float64
	compareRelTol        float64
	compareIgnoreSpaces  bool
	compareLeftName      string
	compareRightName     string
	compareSampleRows    int
	compareSampleColumns int
	compareHTMLFile      string
	compareUpload        bool
)

// compareCmd compares two tables or CSV files and prints the report.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two tables or CSV files",
	Long: `Compare two tabular datasets on a join key set.

Each side is either a table name in the configured database or a path to
a CSV file. CSV files are loaded into scratch tables for the comparison
and dropped afterwards.

Examples:
  # Compare two database tables on a single key
  tablediff compare --left orders --right orders_v2 --join-columns order_id

  # Compare CSV files with a numeric tolerance
  tablediff compare --left a.csv --right b.csv --join-columns id --abs-tol 0.01

  # Write an HTML report and upload it to object storage
  tablediff compare --left a --right b --join-columns id --html-file report.html --upload`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareLeft, "left", "", "Left table name or CSV file path (required)")
	compareCmd.Flags().StringVar(&compareRight, "right", "", "Right table name or CSV file path (required)")
	compareCmd.Flags().StringSliceVar(&compareJoinColumns, "join-columns", nil, "Columns to align rows on (required)")
	compareCmd.Flags().Float64Var(&compareAbsTol, "abs-tol", 0, "Absolute numeric tolerance")
	compareCmd.Flags().Float64Var(&compareRelTol, "rel-tol", 0, "Relative numeric tolerance")
	compareCmd.Flags().BoolVar(&compareIgnoreSpaces, "ignore-spaces", false, "Strip surrounding whitespace from strings before comparing")
	compareCmd.Flags().StringVar(&compareLeftName, "left-name", "", "Display name for the left side (default LEFT)")
	compareCmd.Flags().StringVar(&compareRightName, "right-name", "", "Display name for the right side (default RIGHT)")
	compareCmd.Flags().IntVar(&compareSampleRows, "sample-rows", 10, "Sample rows per report section")
	compareCmd.Flags().IntVar(&compareSampleColumns, "sample-columns", 10, "Columns shown in unmatched-row samples")
	compareCmd.Flags().StringVar(&compareHTMLFile, "html-file", "", "Write an HTML rendering of the report to this file")
	compareCmd.Flags().BoolVar(&compareUpload, "upload", false, "Upload the HTML report to object storage")

	_ = compareCmd.MarkFlagRequired("left")
	_ = compareCmd.MarkFlagRequired("right")
	_ = compareCmd.MarkFlagRequired("join-columns")

	RootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Connect to storage only when the report should be uploaded
	var client storage.Client
	if compareUpload {
		client, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
	}

	// Resolve CSV inputs into scratch tables
	leftTable, cleanupLeft, err := resolveInput(db, compareLeft, l)
	if err != nil {
		return err
	}
	defer cleanupLeft()

	rightTable, cleanupRight, err := resolveInput(db, compareRight, l)
	if err != nil {
		return err
	}
	defer cleanupRight()

	svc := compare.NewService(db, client, cfg.Storage.Bucket, l)
	summary, err := svc.Run(ctx, compare.Request{
		LeftTable:     leftTable,
		RightTable:    rightTable,
		JoinColumns:   compareJoinColumns,
		AbsTol:        compareAbsTol,
		RelTol:        compareRelTol,
		IgnoreSpaces:  compareIgnoreSpaces,
		LeftName:      compareLeftName,
		RightName:     compareRightName,
		SampleRows:    compareSampleRows,
		SampleColumns: compareSampleColumns,
		UploadReport:  compareUpload,
	})
	if err != nil {
		return err
	}

	fmt.Print(summary.Report)

	if compareHTMLFile != "" {
		html := compare.HTMLReport(summary.Report)
		if err := os.WriteFile(compareHTMLFile, []byte(html), 0o644); err != nil {
			return fmt.Errorf("failed to write html report: %w", err)
		}
		l.Info("HTML report written", zap.String("file", compareHTMLFile))
	}
	if summary.ReportObject != "" {
		l.Info("HTML report uploaded", zap.String("object", summary.ReportObject))
	}

	if !summary.Matches {
		l.Warn("Datasets do not match")
	}
	return nil
}

// resolveInput maps a CLI input to a table name. Paths ending in .csv are
// loaded into a scratch table; the returned cleanup drops it again.
func resolveInput(db *gorm.DB, input string, l *zap.Logger) (string, func(), error) {
	if !strings.HasSuffix(strings.ToLower(input), ".csv") {
		return input, func() {}, nil
	}
	table, err := loader.LoadCSV(db, input)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load %s: %w", input, err)
	}
	l.Info("CSV loaded", zap.String("file", input), zap.String("table", table))
	cleanup := func() {
		if err := loader.DropTable(db, table); err != nil {
			l.Warn("Failed to drop scratch table", zap.String("table", table), zap.Error(err))
		}
	}
	return table, cleanup, nil
}
