// Package engine runs the classification pipeline over call-site records:
// evaluator, then scorer, then aggregator.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/cryptoscan/pkg/aggregator"
	"github.com/scan-io-git/cryptoscan/pkg/callsite"
	"github.com/scan-io-git/cryptoscan/pkg/catalog"
	"github.com/scan-io-git/cryptoscan/pkg/classification"
	"github.com/scan-io-git/cryptoscan/pkg/evaluator"
	"github.com/scan-io-git/cryptoscan/pkg/findings"
	"github.com/scan-io-git/cryptoscan/pkg/scorer"
	"github.com/scan-io-git/cryptoscan/pkg/shared"
)

// Options tunes a scan.
type Options struct {
	Workers int
	ScanID  string
}

// Engine is safe for concurrent use once constructed.
type Engine struct {
	catalog   *catalog.Catalog
	digest    string
	evaluator *evaluator.Evaluator
	scorer    *scorer.Scorer
	opts      Options
	logger    hclog.Logger

	// classify is the per-record step run by Scan workers.
	classify func(callsite.Record) findings.Finding
}

// New builds an engine over a finished catalog.
func New(cat *catalog.Catalog, opts Options, logger hclog.Logger) (*Engine, error) {
	if cat == nil {
		return nil, fmt.Errorf("engine requires a catalog")
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	digest, err := cat.Digest()
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint catalog: %w", err)
	}

	e := &Engine{
		catalog:   cat,
		digest:    digest,
		evaluator: evaluator.New(cat),
		scorer:    scorer.New(cat.Policy()),
		opts:      opts,
		logger:    logger,
	}
	e.classify = e.Classify
	return e, nil
}

// Classify turns one record into a finding. It is total: a panic while
// evaluating is reported as an indeterminate finding.
func (e *Engine) Classify(rec callsite.Record) (f findings.Finding) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("classification panicked", "family", rec.Family, "location", rec.Location.String(), "panic", r)
			f = e.indeterminate(rec, fmt.Sprintf("Classification failed unexpectedly: %v", r))
		}
	}()

	verdict := e.evaluator.Evaluate(rec)
	assessment := e.scorer.Assess(verdict.Signature, verdict.Tags)

	f = findings.Finding{
		Record:      rec,
		Family:      canonicalFamily(rec),
		Tags:        verdict.Tags,
		Severity:    assessment.Severity,
		Rationale:   verdict.Rationale,
		Remediation: assessment.Remediation,
		RuleIDs:     verdict.RuleIDs,
		RiskScore:   assessment.RiskScore,
	}
	if verdict.Signature != nil {
		f.Family = verdict.Signature.Family
		f.Category = verdict.Signature.Category
		if len(verdict.Signature.References) > 0 {
			f.References = append([]string(nil), verdict.Signature.References...)
		}
	}
	return f
}

func canonicalFamily(rec callsite.Record) string {
	return strings.ToUpper(strings.TrimSpace(rec.Family))
}

func (e *Engine) indeterminate(rec callsite.Record, rationale string) findings.Finding {
	tags := classification.NewTagSet(classification.Indeterminate)
	a := e.scorer.Assess(nil, tags)
	return findings.Finding{
		Record:      rec,
		Family:      canonicalFamily(rec),
		Tags:        tags,
		Severity:    a.Severity,
		Rationale:   rationale,
		Remediation: a.Remediation,
		RiskScore:   a.RiskScore,
	}
}

// Scan classifies records in parallel and aggregates them in input order.
// On cancellation it stops submitting records and returns the partial report
// along with ctx.Err().
func (e *Engine) Scan(ctx context.Context, records []callsite.Record) (*findings.Report, error) {
	agg := aggregator.New(aggregator.Metadata{
		ScanID:         e.opts.ScanID,
		CatalogVersion: e.catalog.Version(),
		CatalogDigest:  e.digest,
	})

	e.logger.Debug("starting scan", "records", len(records), "workers", e.opts.Workers, "catalogVersion", e.catalog.Version())

	results := make([]*findings.Finding, len(records))
	scanErr := shared.ForEachBounded(ctx, e.opts.Workers, len(records), func(i int) {
		f := e.classify(records[i])
		results[i] = &f
		e.logger.Trace("classified record", "index", i, "family", records[i].Family, "tags", f.Tags.String())
	})

	// Only a contiguous prefix keeps discovery order intact.
	for i, f := range results {
		if f == nil {
			e.logger.Warn("scan cancelled, report is partial", "classified", i, "total", len(records))
			if err := agg.MarkPartial(); err != nil {
				return nil, err
			}
			break
		}
		if err := agg.Add(*f); err != nil {
			return nil, err
		}
	}
	if scanErr != nil {
		_ = agg.MarkPartial()
	}

	report := agg.Finalize()
	e.logger.Info("scan finished", "findings", report.Total, "partial", report.Partial, "riskScore", report.RiskScore)
	return report, scanErr
}

// Catalog returns the catalog the engine evaluates against.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}
