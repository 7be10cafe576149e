// Package lead normalizes raw checker and field-report output into
// canonical actionable leads with snake_case keys and validated line
// numbers.
package lead

import (
	"regexp"
	"strconv"
	"strings"

	"pandoc-debugger/internal/logger"
	"pandoc-debugger/internal/types"
)

// Hints carries the user-facing source file names attached to every lead.
type Hints struct {
	MarkdownFile string
	TexFile      string
}

// keyMap maps recognized upper-case field-report keys to their canonical
// snake_case names. Anything else lands in Extra with an unknown_ prefix.
var keyMap = map[string]string{
	"ERROR_TYPE":         "error_type",
	"LINE_NUMBER":        "line_number",
	"PROBLEM_SNIPPET":    "problem_snippet",
	"LINE_CONTENT_RAW":   "line_content_raw",
	"LINE_CONTENT":       "line_content_raw",
	"OPEN_COUNT":         "open_count",
	"CLOSE_COUNT":        "close_count",
	"OPEN_DELIM_COUNT":   "open_count",
	"CLOSE_DELIM_COUNT":  "close_count",
	"LEFT_COUNT":         "left_count",
	"RIGHT_COUNT":        "right_count",
	"OPENING_DELIM_CHAR": "opening_delim_char",
	"CLOSING_DELIM_CHAR": "closing_delim_char",
	"ENV_NAME":           "env_name",
	"EXPECTED_ENV_NAME":  "expected_env_name",
	"FOUND_ENV_NAME":     "found_env_name",
}

var (
	snakeFirstRe  = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	snakeSecondRe = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	digitsRe      = regexp.MustCompile(`^[0-9]+$`)
)

// ToSnakeCase converts CamelCase and mixedCase identifiers to snake_case.
// Fully uppercase names that already use underscores are lowercased as-is.
func ToSnakeCase(s string) string {
	if s == strings.ToUpper(s) && strings.Contains(s, "_") {
		return strings.ToLower(s)
	}
	s = snakeFirstRe.ReplaceAllString(s, "${1}_${2}")
	s = snakeSecondRe.ReplaceAllString(s, "${1}_${2}")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ToLower(s)
}

// normalizeLineNumber keeps a positive all-digit value and maps everything
// else to the unknown sentinel.
func normalizeLineNumber(v string) string {
	v = strings.TrimSpace(v)
	if digitsRe.MatchString(v) && strings.Trim(v, "0") != "" {
		return strings.TrimLeft(v, "0")
	}
	return types.LineUnknown
}

// NormalizeKeyValue parses a KEY=VALUE field report (one pair per line)
// into an actionable lead. Recognized keys map to canonical fields;
// unrecognized keys are kept under Extra, snake-cased with an unknown_
// prefix. Parsing is forgiving: lines without "=" are skipped.
func NormalizeKeyValue(report string, hints Hints) *types.ActionableLead {
	lead := newLead(hints)

	for _, line := range strings.Split(report, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			logger.Debug("skipping malformed field report line", logger.String("line", line))
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		canonical, known := keyMap[key]
		if !known {
			if lead.Extra == nil {
				lead.Extra = make(map[string]string)
			}
			lead.Extra["unknown_"+ToSnakeCase(key)] = value
			continue
		}
		setField(lead, canonical, value)
	}

	finishLead(lead)
	return lead
}

// NormalizeFinding converts an in-process checker finding into a lead.
func NormalizeFinding(f *types.Finding, hints Hints) *types.ActionableLead {
	lead := newLead(hints)
	lead.ErrorType = ToSnakeCase(string(f.Kind))
	if f.LineNumber > 0 {
		lead.LineNumber = strconv.Itoa(f.LineNumber)
	}
	lead.ProblemSnippet = f.ProblemSnippet
	lead.LineContentRaw = f.OriginalLine

	if f.Counts != nil {
		open := strconv.Itoa(f.Counts.Open)
		close := strconv.Itoa(f.Counts.Close)
		if f.Kind == types.KindUnmatchedLeftRight {
			lead.LeftCount, lead.RightCount = open, close
		} else {
			lead.OpenCount, lead.CloseCount = open, close
		}
	}
	if f.DelimChars != nil {
		lead.OpeningDelimChar = string(f.DelimChars.Opening)
		lead.ClosingDelimChar = string(f.DelimChars.Closing)
	}
	if f.EnvNames != nil {
		switch f.Kind {
		case types.KindMismatchedEnvironment:
			lead.ExpectedEnvName = f.EnvNames.Expected
			lead.FoundEnvName = f.EnvNames.Found
		case types.KindUnexpectedEnvironmentEnd:
			lead.EnvName = f.EnvNames.Found
		default:
			lead.EnvName = f.EnvNames.Expected
		}
	}

	finishLead(lead)
	return lead
}

func newLead(hints Hints) *types.ActionableLead {
	md := hints.MarkdownFile
	if md == "" {
		md = "not_specified.md"
	}
	tex := hints.TexFile
	if tex == "" {
		tex = "not_specified.tex"
	}
	return &types.ActionableLead{
		LineNumber:     types.LineUnknown,
		MdFileForHint:  md,
		TexFileForHint: tex,
	}
}

// finishLead enforces the lead invariants: a validated line number and a
// problem snippet defaulted from the raw line content.
func finishLead(lead *types.ActionableLead) {
	lead.LineNumber = normalizeLineNumber(lead.LineNumber)
	if lead.ProblemSnippet == "" {
		lead.ProblemSnippet = lead.LineContentRaw
	}
}

func setField(lead *types.ActionableLead, key, value string) {
	switch key {
	case "error_type":
		// checker scripts emit CamelCase kinds; the lead schema is snake_case
		lead.ErrorType = ToSnakeCase(value)
	case "line_number":
		lead.LineNumber = value
	case "problem_snippet":
		lead.ProblemSnippet = value
	case "line_content_raw":
		lead.LineContentRaw = value
	case "open_count":
		lead.OpenCount = value
	case "close_count":
		lead.CloseCount = value
	case "left_count":
		lead.LeftCount = value
	case "right_count":
		lead.RightCount = value
	case "opening_delim_char":
		lead.OpeningDelimChar = value
	case "closing_delim_char":
		lead.ClosingDelimChar = value
	case "env_name":
		lead.EnvName = value
	case "expected_env_name":
		lead.ExpectedEnvName = value
	case "found_env_name":
		lead.FoundEnvName = value
	}
}
