// Package pipeline wires log extraction, structural source checking, lead
// normalization, and the suggestion engine into one diagnosis pass.
package pipeline

import (
	"pandoc-debugger/internal/checker"
	"pandoc-debugger/internal/lead"
	"pandoc-debugger/internal/logger"
	"pandoc-debugger/internal/logscan"
	"pandoc-debugger/internal/suggest"
	"pandoc-debugger/internal/textio"
	"pandoc-debugger/internal/types"
)

// Report is the full result of one diagnosis pass.
type Report struct {
	Primary     types.PrimaryErrorRecord `json:"primary_error"`
	Findings    []types.Finding          `json:"findings,omitempty"`
	Lead        *types.ActionableLead    `json:"lead,omitempty"`
	Suggestions []types.Suggestion       `json:"suggestions,omitempty"`
}

// structuralSignatures gates the source checkers: only signatures that a
// source-level analysis can refine trigger the checker battery. Running
// checkers on, say, a missing input file would produce noise.
var structuralSignatures = map[types.ErrorSignature]bool{
	types.SigUnbalancedBraces:     true,
	types.SigTooManyClosingBraces: true,
	types.SigMismatchedDelimiters: true,
	types.SigMissingDollar:        true,
	types.SigUndefinedEnvironment: true,
	types.SigNoErrorMessage:       true,
	types.SigUnknownError:         true,
}

// Pipeline is a configured diagnosis pass. It is safe to reuse across
// inputs.
type Pipeline struct {
	extractor *logscan.Extractor
	checkers  []checker.Checker
	engine    *suggest.Engine
	strategy  checker.Strategy
	hints     lead.Hints
}

// Options configures a Pipeline. Zero values select defaults throughout.
type Options struct {
	Extractor *logscan.Extractor
	Checkers  []checker.Checker
	Rules     *suggest.RuleSet
	Strategy  checker.Strategy
	Hints     lead.Hints
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		extractor: opts.Extractor,
		checkers:  opts.Checkers,
		engine:    suggest.NewEngine(opts.Rules),
		strategy:  opts.Strategy,
		hints:     opts.Hints,
	}
	if p.extractor == nil {
		p.extractor = logscan.NewExtractor(nil, 0, 0)
	}
	if p.checkers == nil {
		p.checkers = checker.DefaultCheckers()
	}
	if p.strategy == "" {
		p.strategy = checker.FirstMatch
	}
	return p
}

// Diagnose analyzes a compiler log and, when the classification warrants
// it, the source text. Diagnosis itself never fails: degraded inputs yield
// degraded reports. sourceText may be empty when no source is available.
func (p *Pipeline) Diagnose(logText, sourceText string) *Report {
	return p.diagnoseWithPrimary(p.extractor.Extract(logText), sourceText)
}

// DiagnoseFiles runs Diagnose over files. An unreadable log is fatal and
// returns a partial report carrying the failure signature; an unreadable
// source only disables the structural checkers.
func (p *Pipeline) DiagnoseFiles(logPath, sourcePath string) (*Report, error) {
	primary, err := p.extractor.ExtractFile(logPath)
	if err != nil {
		return &Report{Primary: primary}, err
	}

	sourceText := ""
	if sourcePath != "" {
		sourceText, err = textio.ReadFile(sourcePath)
		if err != nil {
			logger.Warn("source file unavailable, skipping structural checks",
				logger.String("path", sourcePath), logger.Err(err))
			sourceText = ""
		}
	}
	return p.diagnoseWithPrimary(primary, sourceText), nil
}

func (p *Pipeline) diagnoseWithPrimary(primary types.PrimaryErrorRecord, sourceText string) *Report {
	report := &Report{Primary: primary}

	if sourceText != "" && structuralSignatures[primary.Signature] {
		report.Findings = checker.Run(p.checkers, sourceText, p.strategy)
	}
	if len(report.Findings) > 0 {
		report.Lead = lead.NormalizeFinding(&report.Findings[0], p.hints)
	} else if primary.Signature != types.SigNoErrorMessage {
		report.Lead = p.leadFromPrimary(primary)
	}
	report.Suggestions = p.engine.Apply(primary.LogExcerpt, primary.LineNumber)

	logger.Info("diagnosis complete",
		logger.String("signature", string(primary.Signature)),
		logger.Int("findings", len(report.Findings)),
		logger.Int("suggestions", len(report.Suggestions)))
	return report
}

// leadFromPrimary builds a lead directly from the log record when no
// structural finding refines it.
func (p *Pipeline) leadFromPrimary(primary types.PrimaryErrorRecord) *types.ActionableLead {
	l := &types.ActionableLead{
		ErrorType:      lead.ToSnakeCase(string(primary.Signature)),
		LineNumber:     primary.LineNumber,
		ProblemSnippet: primary.RawMessage,
		MdFileForHint:  p.hints.MarkdownFile,
		TexFileForHint: p.hints.TexFile,
	}
	if l.MdFileForHint == "" {
		l.MdFileForHint = "not_specified.md"
	}
	if l.TexFileForHint == "" {
		l.TexFileForHint = "not_specified.tex"
	}
	if l.LineNumber == "" {
		l.LineNumber = types.LineUnknown
	}
	return l
}
