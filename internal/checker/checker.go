// Package checker implements structural source checkers for TeX documents:
// delimiter balance, paired \left/\right delimiters, environment pairing,
// and math content validation. Checkers inspect the source, not the log,
// and report at most one finding each.
package checker

import (
	"pandoc-debugger/internal/logger"
	"pandoc-debugger/internal/types"
)

// Checker inspects source text for one class of structural problem. A nil
// finding with a nil error means the source is clean for that class.
type Checker interface {
	// Name returns a stable identifier used in logs
	Name() string
	// Check scans the source and returns the first finding, if any
	Check(src string) (*types.Finding, error)
}

// Strategy selects how the runner aggregates findings across checkers.
type Strategy string

const (
	// FirstMatch stops at the first checker that reports a finding
	FirstMatch Strategy = "first_match"
	// CollectAll runs every checker and returns all findings
	CollectAll Strategy = "collect_all"
)

// ParseStrategy maps a config string to a Strategy, defaulting to FirstMatch.
func ParseStrategy(s string) Strategy {
	if s == string(CollectAll) {
		return CollectAll
	}
	return FirstMatch
}

// DefaultCheckers returns the checker battery in dispatch order. Order
// matters under FirstMatch: raw delimiter counting runs before the more
// specific paired-delimiter and environment analyses.
func DefaultCheckers() []Checker {
	return []Checker{
		NewDelimiterBalanceChecker(),
		NewPairedDelimiterChecker(),
		NewEnvironmentBalanceChecker(),
		NewMathContentValidator(),
	}
}

// Run executes the checkers against the source under the given strategy.
// A checker error never aborts the run: it is logged and treated as no
// finding, so one misbehaving checker cannot mask the others.
func Run(checkers []Checker, src string, strategy Strategy) []types.Finding {
	var findings []types.Finding
	for _, c := range checkers {
		f, err := c.Check(src)
		if err != nil {
			logger.Warn("checker failed, skipping", logger.String("checker", c.Name()), logger.Err(err))
			continue
		}
		if f == nil {
			continue
		}
		logger.Debug("checker reported finding",
			logger.String("checker", c.Name()),
			logger.String("kind", string(f.Kind)),
			logger.Int("line", f.LineNumber))
		findings = append(findings, *f)
		if strategy == FirstMatch {
			break
		}
	}
	return findings
}
