package classify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/cryptoscan/cmd/version"
	cmdutil "github.com/scan-io-git/cryptoscan/internal/cmd"
	"github.com/scan-io-git/cryptoscan/internal/config"
	internalsarif "github.com/scan-io-git/cryptoscan/internal/sarif"
	"github.com/scan-io-git/cryptoscan/pkg/callsite"
	"github.com/scan-io-git/cryptoscan/pkg/catalog"
	"github.com/scan-io-git/cryptoscan/pkg/classification"
	"github.com/scan-io-git/cryptoscan/pkg/findings"
	"github.com/scan-io-git/cryptoscan/pkg/issuecorrelation"
	"github.com/scan-io-git/cryptoscan/pkg/shared/errors"
	"github.com/scan-io-git/cryptoscan/pkg/shared/files"
)

const reportNameTemplate = "cryptoscan-report.%s"

// applyConfigDefaults fills options that were not given on the command line from the global config.
func applyConfigDefaults(options *RunOptionsClassify, cfg *config.Config) {
	if cfg != nil {
		options.CatalogPath = config.SetThen(options.CatalogPath, cfg.Engine.CatalogPath)
		options.Threads = config.SetThen(options.Threads, cfg.Engine.Threads)
		options.Format = config.SetThen(options.Format, cfg.Report.Format)
		options.OutputPath = config.SetThen(options.OutputPath, cfg.Report.Output)
		options.FailOn = config.SetThen(options.FailOn, cfg.Report.FailOn)
	}
	options.Threads = config.SetThen(options.Threads, config.DefaultThreads)
	options.Format = strings.ToLower(config.SetThen(options.Format, config.DefaultFormat))
}

// readRecords loads call-site records from the positional path or the input file.
func readRecords(options *RunOptionsClassify, args []string) ([]callsite.Record, error) {
	var path string
	switch mode := cmdutil.DetermineMode(args); mode {
	case cmdutil.ModeSinglePath:
		path = args[0]
	case cmdutil.ModeInputFile:
		path = options.InputFile
	default:
		return nil, fmt.Errorf("invalid input mode: %s", mode)
	}

	expanded, err := files.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	records, err := callsite.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("error parsing the input file %s: %w", path, err)
	}
	return records, nil
}

// loadCatalog returns the built-in catalog unless a catalog file is given.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	expanded, err := files.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return catalog.LoadFile(expanded)
}

// renderReport serializes the report in the requested format.
func renderReport(report *findings.Report, format string, logger hclog.Logger) ([]byte, error) {
	switch format {
	case "sarif":
		log, err := internalsarif.Build(report, internalsarif.ToolMetadata{Version: version.CoreVersion})
		if err != nil {
			return nil, err
		}
		info := internalsarif.CollectSeverityInfo(log)
		logger.Info("SARIF report built", "error", info["error"], "warning", info["warning"], "note", info["note"], "total", info["total"])

		var buf bytes.Buffer
		if err := log.PrettyWrite(&buf); err != nil {
			return nil, fmt.Errorf("failed to write SARIF report: %w", err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}

// writeReport prints the report to stdout or stores it under the output path.
func writeReport(cmd *cobra.Command, data []byte, options *RunOptionsClassify) error {
	if options.OutputPath == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	fullPath, _, err := files.DetermineFileFullPath(options.OutputPath, fmt.Sprintf(reportNameTemplate, options.Format))
	if err != nil {
		return err
	}
	if err := files.WriteFile(fullPath, data); err != nil {
		return err
	}
	options.OutputPath = fullPath
	return nil
}

// applyGate fails the command when findings reach the fail-on severity.
// With a baseline only findings missing from the baseline are counted.
func applyGate(report *findings.Report, options *RunOptionsClassify, logger hclog.Logger) error {
	var count int
	var threshold classification.Severity
	if options.FailOn != "" {
		parsed, err := classification.ParseSeverity(options.FailOn)
		if err != nil {
			return errors.NewCommandError(err, errors.ExitFailure)
		}
		threshold = parsed
	}

	if options.BaselinePath != "" {
		path, err := files.ExpandPath(options.BaselinePath)
		if err != nil {
			return errors.NewCommandError(err, errors.ExitFailure)
		}
		baseline, err := issuecorrelation.ReadBaseline(path)
		if err != nil {
			logger.Error("failed to read baseline", "error", err)
			return errors.NewCommandError(err, errors.ExitFailure)
		}
		cmp := issuecorrelation.Compare(report, baseline)
		logger.Info("compared with baseline", "new", len(cmp.New), "resolved", len(cmp.Resolved), "matched", cmp.Matched)
		count = cmp.CountAtLeast(threshold)
	} else {
		count = report.CountAtLeast(threshold)
	}

	if options.FailOn == "" || count == 0 {
		return nil
	}
	logger.Warn("severity gate failed", "threshold", threshold.String(), "count", count)
	return errors.NewGateError(count, threshold.String())
}
