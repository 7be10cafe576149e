package logscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pandoc-debugger/internal/types"
)

// ============================================================================
// Classification
// ============================================================================

func TestClassifyKnownSignatures(t *testing.T) {
	table := MustDefaultTable()

	cases := []struct {
		anchor string
		want   types.ErrorSignature
	}{
		{"! Undefined control sequence.", types.SigUndefinedControlSequence},
		{"! Missing $ inserted.", types.SigMissingDollar},
		{"! Extra }, or forgotten $.", types.SigUnbalancedBraces},
		{"! Misplaced alignment tab character &.", types.SigMisplacedAlignmentTab},
		{"! LaTeX Error: Environment theorem undefined.", types.SigUndefinedEnvironment},
		{"! Too many }'s.", types.SigTooManyClosingBraces},
		{"! LaTeX Error: File `missing.sty' not found.", types.SigFileNotFound},
		{"! LaTeX Error: Missing \\begin{document}.", types.SigMissingBeginDocument},
		{"! Missing number, treated as zero.", types.SigMissingNumber},
		{"! Illegal unit of measure (pt inserted).", types.SigIllegalUnit},
		{"! Paragraph ended before \\textbf was complete.", types.SigUnexpectedParagraphEnd},
		{"Runaway argument?", types.SigRunawayArgument},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, table.Classify(tc.anchor), tc.anchor)
	}
}

func TestClassifyFallbacks(t *testing.T) {
	table := MustDefaultTable()

	assert.Equal(t, types.SigGenericError,
		table.Classify("! LaTeX Error: Something exotic happened."))
	assert.Equal(t, types.SigUnknownError,
		table.Classify("! Emergency stop."))
}

func TestClassifyCaseInsensitive(t *testing.T) {
	table := MustDefaultTable()

	assert.Equal(t, types.SigUndefinedControlSequence,
		table.Classify("! UNDEFINED CONTROL SEQUENCE."))
}

func TestClassifyFirstRuleWins(t *testing.T) {
	table, err := NewPatternTable([]SignatureRule{
		{Name: "a", Pattern: "shared", MatchType: MatchString, Signature: types.SigGenericError},
		{Name: "b", Pattern: "shared", MatchType: MatchString, Signature: types.SigUnknownError},
	})
	require.NoError(t, err)

	assert.Equal(t, types.SigGenericError, table.Classify("shared text"))
}

// ============================================================================
// Table construction
// ============================================================================

func TestNewPatternTableRejectsBadRules(t *testing.T) {
	_, err := NewPatternTable([]SignatureRule{
		{Name: "empty", Pattern: "", MatchType: MatchString, Signature: types.SigGenericError},
	})
	assert.Error(t, err)

	_, err = NewPatternTable([]SignatureRule{
		{Name: "badre", Pattern: "[unclosed", MatchType: MatchRegex, Signature: types.SigGenericError},
	})
	assert.Error(t, err)

	_, err = NewPatternTable([]SignatureRule{
		{Name: "badtype", Pattern: "x", MatchType: "glob", Signature: types.SigGenericError},
	})
	assert.Error(t, err)
}

func TestDefaultRulesCompile(t *testing.T) {
	table, err := NewPatternTable(DefaultSignatureRules())
	require.NoError(t, err)
	assert.NotEmpty(t, table.Rules())
}
