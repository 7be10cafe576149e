package checker

import (
	"regexp"
	"strings"

	"pandoc-debugger/internal/types"
)

// PairedDelimiterChecker verifies that every \right delimiter closes the
// delimiter its matching \left opened. Unmatched counts are left to the
// math content validator; this checker cares only about wrong pairings.
type PairedDelimiterChecker struct{}

// NewPairedDelimiterChecker creates a PairedDelimiterChecker.
func NewPairedDelimiterChecker() *PairedDelimiterChecker {
	return &PairedDelimiterChecker{}
}

// Name returns the checker identifier.
func (c *PairedDelimiterChecker) Name() string { return "paired_delimiters" }

// \left takes only opening characters and \right only closing ones;
// anything else is not a sized-delimiter token.
var pairedTokenRe = regexp.MustCompile(`\\(?:(left)\s*([([{|.])|(right)\s*([)\]}|.]))`)

// closerFor maps each opening delimiter to its expected closer. "." is the
// invisible delimiter and "|" closes itself.
var closerFor = map[byte]byte{
	'(': ')',
	'[': ']',
	'{': '}',
	'|': '|',
	'.': '.',
}

// Check tokenizes \left/\right pairs line by line with a stack. The stack
// is scoped to one line: an unclosed \left at end of line is not this
// checker's business, and a \right with no pending \left is skipped. The
// first wrong pairing wins.
func (c *PairedDelimiterChecker) Check(src string) (*types.Finding, error) {
	for i, line := range strings.Split(src, "\n") {
		var stack []byte
		for _, loc := range pairedTokenRe.FindAllStringSubmatchIndex(line, -1) {
			if loc[2] >= 0 {
				stack = append(stack, line[loc[4]])
				continue
			}

			if len(stack) == 0 {
				continue
			}
			opener := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			closer := line[loc[8]]
			if closer == closerFor[opener] {
				continue
			}
			return &types.Finding{
				Kind:           types.KindMismatchedPairedDelims,
				LineNumber:     i + 1,
				DelimChars:     &types.DelimPair{Opening: opener, Closing: closer},
				ProblemSnippet: "\\left" + string(opener) + " ... \\right" + string(closer),
				OriginalLine:   line,
			}, nil
		}
	}
	return nil, nil
}
