package checker

import (
	"regexp"
	"strings"

	"pandoc-debugger/internal/types"
)

// DelimiterBalanceChecker counts raw delimiter characters inside math
// regions. Counting is deliberately raw: escaped braces like \{ still
// count, matching what the TeX scanner itself trips over most often.
type DelimiterBalanceChecker struct{}

// NewDelimiterBalanceChecker creates a DelimiterBalanceChecker.
func NewDelimiterBalanceChecker() *DelimiterBalanceChecker {
	return &DelimiterBalanceChecker{}
}

// Name returns the checker identifier.
func (c *DelimiterBalanceChecker) Name() string { return "delimiter_balance" }

// delimKinds fixes the inspection order within a region: curly braces
// first, then parentheses, then square brackets.
var delimKinds = []struct {
	open, close byte
	kind        types.FindingKind
}{
	{'{', '}', types.KindUnbalancedCurlyBraces},
	{'(', ')', types.KindUnbalancedParentheses},
	{'[', ']', types.KindUnbalancedSquareBrackets},
}

// sizedDelimRe strips \left/\right tokens together with their delimiter
// character. Those pairs belong to the paired-delimiter checker; counting
// them here would double-report every sized-delimiter mismatch.
var sizedDelimRe = regexp.MustCompile(`\\(?:left|right)\s*[([{)\]}|.]`)

// Check scans math regions in order and reports the first count mismatch.
func (c *DelimiterBalanceChecker) Check(src string) (*types.Finding, error) {
	for _, region := range ExtractMathRegionsWithFallback(src) {
		counted := sizedDelimRe.ReplaceAllString(region.Content, " ")
		for _, d := range delimKinds {
			open := strings.Count(counted, string(d.open))
			close := strings.Count(counted, string(d.close))
			if open == close {
				continue
			}
			return &types.Finding{
				Kind:           d.kind,
				LineNumber:     region.Line,
				Counts:         &types.PairCounts{Open: open, Close: close},
				ProblemSnippet: snippet(region.Content),
				OriginalLine:   region.SourceLine,
			}, nil
		}
	}
	return nil, nil
}
