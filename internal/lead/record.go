package lead

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"pandoc-debugger/internal/types"
)

// The colon record is a legacy six-field line format emitted by older
// checker scripts:
//
//	KIND:LINE:A:B:SNIPPET:ORIGINAL
//
// A and B depend on the kind: counts for balance findings, delimiter
// characters for paired-delimiter findings, environment names otherwise.
// The last field absorbs any remaining colons. JSON is the canonical
// encoding; the colon record survives for parsing old output only.
const recordFields = 6

// FormatRecord renders a finding as a colon record.
func FormatRecord(f *types.Finding) string {
	a, b := "", ""
	switch {
	case f.Counts != nil:
		a = strconv.Itoa(f.Counts.Open)
		b = strconv.Itoa(f.Counts.Close)
	case f.DelimChars != nil:
		a = string(f.DelimChars.Opening)
		b = string(f.DelimChars.Closing)
	case f.EnvNames != nil:
		a = f.EnvNames.Expected
		b = f.EnvNames.Found
	}
	return strings.Join([]string{
		string(f.Kind),
		strconv.Itoa(f.LineNumber),
		a,
		b,
		f.ProblemSnippet,
		f.OriginalLine,
	}, ":")
}

// ParseRecord parses a colon record back into a finding. The kind decides
// how the two variable fields are interpreted.
func ParseRecord(s string) (*types.Finding, error) {
	parts := strings.SplitN(s, ":", recordFields)
	if len(parts) != recordFields {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"malformed checker record", fmt.Sprintf("expected %d fields, got %d", recordFields, len(parts)), nil)
	}

	f := &types.Finding{
		Kind:           types.FindingKind(parts[0]),
		ProblemSnippet: parts[4],
		OriginalLine:   parts[5],
	}
	if n, err := strconv.Atoi(parts[1]); err == nil && n > 0 {
		f.LineNumber = n
	}

	a, b := parts[2], parts[3]
	switch f.Kind {
	case types.KindUnbalancedCurlyBraces, types.KindUnbalancedParentheses,
		types.KindUnbalancedSquareBrackets, types.KindUnbalancedBracesInMath,
		types.KindUnmatchedLeftRight:
		open, err1 := strconv.Atoi(a)
		close, err2 := strconv.Atoi(b)
		if err1 != nil || err2 != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
				"malformed checker record", "non-numeric counts: "+a+", "+b, nil)
		}
		f.Counts = &types.PairCounts{Open: open, Close: close}
	case types.KindMismatchedPairedDelims:
		if len(a) != 1 || len(b) != 1 {
			return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
				"malformed checker record", "delimiter fields must be single characters", nil)
		}
		f.DelimChars = &types.DelimPair{Opening: a[0], Closing: b[0]}
	case types.KindMismatchedEnvironment, types.KindUnexpectedEnvironmentEnd,
		types.KindUnclosedEnvironment:
		if a != "" || b != "" {
			f.EnvNames = &types.EnvPair{Expected: a, Found: b}
		}
	}
	return f, nil
}

// MarshalLead encodes a lead as indented canonical JSON.
func MarshalLead(lead *types.ActionableLead) ([]byte, error) {
	data, err := json.MarshalIndent(lead, "", "  ")
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "failed to encode lead", err)
	}
	return data, nil
}
