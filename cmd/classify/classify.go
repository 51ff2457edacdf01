package classify

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/cryptoscan/internal/config"
	"github.com/scan-io-git/cryptoscan/internal/engine"
	"github.com/scan-io-git/cryptoscan/internal/logger"
	"github.com/scan-io-git/cryptoscan/pkg/shared"
	"github.com/scan-io-git/cryptoscan/pkg/shared/errors"
)

// RunOptionsClassify holds the arguments for the classify command.
type RunOptionsClassify struct {
	InputFile    string
	CatalogPath  string
	Format       string
	OutputPath   string
	Threads      int
	FailOn       string
	BaselinePath string
}

// Global variables for configuration and command arguments
var (
	AppConfig            *config.Config
	classifyOptions      RunOptionsClassify
	exampleClassifyUsage = `  # Classifying call-site records from a file with the built-in catalog
  cryptoscan classify /path/to/records.json

  # Classifying YAML records with a custom catalog and SARIF output
  cryptoscan classify --input-file /path/to/records.yaml --catalog /path/to/catalog.yaml --format sarif

  # Writing the report into a directory with 4 concurrent workers
  cryptoscan classify -i /path/to/records.json -o /path/to/reports/ -j 4

  # Failing the pipeline when any finding is high or critical
  cryptoscan classify /path/to/records.json --fail-on high

  # Gating only on findings that are not in a previous report
  cryptoscan classify /path/to/records.json --baseline /path/to/previous.json --fail-on medium`
)

// ClassifyCmd represents the classify command.
var ClassifyCmd = &cobra.Command{
	Use:                   "classify {--input-file/-i PATH | PATH} [--catalog PATH] [--format/-f json|sarif] [--output/-o PATH] [-j THREADS_NUMBER, default=1] [--fail-on SEVERITY] [--baseline PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleClassifyUsage,
	Short:                 "Classifies cryptographic call sites against the algorithm catalog",
	Long: `Classifies normalized cryptographic call-site records against the algorithm catalog.

Every record yields one finding with classification tags, a severity, a rationale
and a remediation. The report is written as JSON or SARIF 2.1.0.`,
	RunE: runClassifyCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runClassifyCommand executes the classify command.
func runClassifyCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-classify")

	applyConfigDefaults(&classifyOptions, AppConfig)
	if err := validateClassifyArgs(&classifyOptions, args); err != nil {
		logger.Error("invalid classify arguments", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}

	records, err := readRecords(&classifyOptions, args)
	if err != nil {
		logger.Error("failed to read call-site records", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}

	cat, err := loadCatalog(classifyOptions.CatalogPath)
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}

	eng, err := engine.New(cat, engine.Options{
		Workers: classifyOptions.Threads,
		ScanID:  uuid.NewString(),
	}, logger)
	if err != nil {
		logger.Error("failed to initialize engine", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, scanErr := eng.Scan(ctx, records)
	if report == nil {
		logger.Error("classification failed", "error", scanErr)
		return errors.NewCommandError(scanErr, errors.ExitFailure)
	}

	data, err := renderReport(report, classifyOptions.Format, logger)
	if err != nil {
		logger.Error("failed to render report", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}
	if err := writeReport(cmd, data, &classifyOptions); err != nil {
		logger.Error("failed to write report", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}

	if scanErr != nil {
		logger.Error("classify command was interrupted, report is partial", "error", scanErr)
		return errors.NewCommandError(scanErr, errors.ExitFailure)
	}

	if err := applyGate(report, &classifyOptions, logger); err != nil {
		return err
	}

	logger.Info("classify command completed successfully", "findings", report.Total, "maxSeverity", report.MaxSeverity().String())
	return nil
}

// Initialize flags for the classify command.
func init() {
	ClassifyCmd.Flags().StringVar(&classifyOptions.BaselinePath, "baseline", "", "Path to a previous JSON report. Only findings missing from it count towards --fail-on.")
	ClassifyCmd.Flags().StringVar(&classifyOptions.CatalogPath, "catalog", "", "Path to a YAML algorithm catalog. The built-in catalog is used when empty.")
	ClassifyCmd.Flags().StringVar(&classifyOptions.FailOn, "fail-on", "", "Exit with code 2 when a finding is at or above this severity (critical, high, medium, low, unknown).")
	ClassifyCmd.Flags().StringVarP(&classifyOptions.Format, "format", "f", "", "Format for the report with results (json or sarif).")
	ClassifyCmd.Flags().BoolP("help", "h", false, "Show help for the classify command.")
	ClassifyCmd.Flags().StringVarP(&classifyOptions.InputFile, "input-file", "i", "", "Path to a JSON or YAML file with call-site records.")
	ClassifyCmd.Flags().StringVarP(&classifyOptions.OutputPath, "output", "o", "", "Path to the output file or directory. The report goes to stdout when empty.")
	ClassifyCmd.Flags().IntVarP(&classifyOptions.Threads, "threads", "j", 0, "Number of concurrent workers to use.")
}
