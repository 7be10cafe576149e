// Package logscan isolates the primary error from a TeX compiler log and
// classifies it against an ordered signature table.
package logscan

import (
	"fmt"
	"regexp"
	"strings"

	"pandoc-debugger/internal/types"
)

// MatchType selects how a pattern is applied to text.
type MatchType string

const (
	// MatchString is a case-insensitive fixed substring test
	MatchString MatchType = "string"
	// MatchRegex is a case-insensitive regular expression search
	MatchRegex MatchType = "regex"
)

// SignatureRule pairs one matcher with the signature it assigns. Rules are
// evaluated in order; the first match wins.
type SignatureRule struct {
	Name      string
	Pattern   string
	MatchType MatchType
	Signature types.ErrorSignature
}

// DefaultSignatureRules returns the built-in classification table, ordered
// from most to least specific. The table is data: tests can assert priority
// directly and callers can extend it without touching control flow.
func DefaultSignatureRules() []SignatureRule {
	return []SignatureRule{
		{Name: "undefined_control_sequence", Pattern: "Undefined control sequence", MatchType: MatchString, Signature: types.SigUndefinedControlSequence},
		{Name: "missing_dollar", Pattern: `Missing \$ inserted`, MatchType: MatchRegex, Signature: types.SigMissingDollar},
		{Name: "unbalanced_braces", Pattern: "Extra }, or forgotten $", MatchType: MatchString, Signature: types.SigUnbalancedBraces},
		{Name: "misplaced_alignment_tab", Pattern: "Misplaced alignment tab character &", MatchType: MatchString, Signature: types.SigMisplacedAlignmentTab},
		{Name: "undefined_environment", Pattern: `Environment .* undefined`, MatchType: MatchRegex, Signature: types.SigUndefinedEnvironment},
		{Name: "too_many_closing_braces", Pattern: "Too many }'s", MatchType: MatchString, Signature: types.SigTooManyClosingBraces},
		{Name: "file_not_found", Pattern: `File .* not found`, MatchType: MatchRegex, Signature: types.SigFileNotFound},
		{Name: "missing_begin_document", Pattern: `Missing \\begin\{document\}`, MatchType: MatchRegex, Signature: types.SigMissingBeginDocument},
		{Name: "missing_number", Pattern: "Missing number, treated as zero", MatchType: MatchString, Signature: types.SigMissingNumber},
		{Name: "illegal_unit", Pattern: "Illegal unit of measure", MatchType: MatchString, Signature: types.SigIllegalUnit},
		{Name: "unexpected_paragraph_end", Pattern: `Paragraph ended before .* was complete`, MatchType: MatchRegex, Signature: types.SigUnexpectedParagraphEnd},
		{Name: "runaway_argument", Pattern: "Runaway argument", MatchType: MatchString, Signature: types.SigRunawayArgument},
		{Name: "mismatched_delimiters", Pattern: `\\left\(.*?\\right\]`, MatchType: MatchRegex, Signature: types.SigMismatchedDelimiters},
	}
}

type compiledRule struct {
	rule SignatureRule
	re   *regexp.Regexp // nil for string rules
}

// PatternTable is an immutable, ordered classifier built from signature
// rules at startup.
type PatternTable struct {
	rules []compiledRule
}

// NewPatternTable compiles the given rules into a classifier. A rule with an
// empty pattern, an unknown match type, or an invalid regular expression is
// a construction error.
func NewPatternTable(rules []SignatureRule) (*PatternTable, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if r.Pattern == "" {
			return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
				"signature rule has empty pattern", r.Name, nil)
		}
		switch r.MatchType {
		case MatchString:
			compiled = append(compiled, compiledRule{rule: r})
		case MatchRegex:
			re, err := regexp.Compile("(?i)" + r.Pattern)
			if err != nil {
				return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
					"signature rule has invalid regex", fmt.Sprintf("%s: %v", r.Name, err), nil)
			}
			compiled = append(compiled, compiledRule{rule: r, re: re})
		default:
			return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
				"signature rule has unknown match type", fmt.Sprintf("%s: %q", r.Name, r.MatchType), nil)
		}
	}
	return &PatternTable{rules: compiled}, nil
}

// MustDefaultTable builds the built-in table. The default rules are
// compile-checked by tests, so failure here is a programming error.
func MustDefaultTable() *PatternTable {
	t, err := NewPatternTable(DefaultSignatureRules())
	if err != nil {
		panic(err)
	}
	return t
}

// Rules returns the rule list in evaluation order.
func (t *PatternTable) Rules() []SignatureRule {
	out := make([]SignatureRule, len(t.rules))
	for i, c := range t.rules {
		out[i] = c.rule
	}
	return out
}

// Classify assigns a signature to the given anchor text. When no rule
// matches, text containing "LaTeX Error" degrades to GENERIC_ERROR and
// anything else to UNKNOWN_ERROR.
func (t *PatternTable) Classify(text string) types.ErrorSignature {
	lower := strings.ToLower(text)
	for _, c := range t.rules {
		if c.re != nil {
			if c.re.MatchString(text) {
				return c.rule.Signature
			}
			continue
		}
		if strings.Contains(lower, strings.ToLower(c.rule.Pattern)) {
			return c.rule.Signature
		}
	}
	if strings.Contains(lower, "latex error") {
		return types.SigGenericError
	}
	return types.SigUnknownError
}
