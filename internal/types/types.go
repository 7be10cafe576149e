// Package types defines core data types and enums for the pandoc-debugger
// diagnostic engine.
package types

// ErrorSignature is a canonical tag naming a class of compiler error.
// A signature is immutable once assigned to a record.
type ErrorSignature string

const (
	SigUndefinedControlSequence ErrorSignature = "UNDEFINED_CONTROL_SEQUENCE"
	SigMissingDollar            ErrorSignature = "MISSING_DOLLAR"
	SigUnbalancedBraces         ErrorSignature = "UNBALANCED_BRACES"
	SigMisplacedAlignmentTab    ErrorSignature = "MISPLACED_ALIGNMENT_TAB"
	SigUndefinedEnvironment     ErrorSignature = "UNDEFINED_ENVIRONMENT"
	SigTooManyClosingBraces     ErrorSignature = "TOO_MANY_CLOSING_BRACES"
	SigFileNotFound             ErrorSignature = "FILE_NOT_FOUND"
	SigMissingBeginDocument     ErrorSignature = "MISSING_BEGIN_DOCUMENT"
	SigMissingNumber            ErrorSignature = "MISSING_NUMBER"
	SigIllegalUnit              ErrorSignature = "ILLEGAL_UNIT"
	SigUnexpectedParagraphEnd   ErrorSignature = "UNEXPECTED_PARAGRAPH_END"
	SigRunawayArgument          ErrorSignature = "RUNAWAY_ARGUMENT"
	SigMismatchedDelimiters     ErrorSignature = "MISMATCHED_DELIMITERS"
	SigGenericError             ErrorSignature = "GENERIC_ERROR"

	// SigNoErrorMessage covers both a genuinely clean compile and a
	// non-standard failure whose log carries no "! " line. The extractor
	// does not distinguish the two cases.
	SigNoErrorMessage ErrorSignature = "NO_ERROR_MESSAGE_IDENTIFIED"
	SigUnknownError   ErrorSignature = "UNKNOWN_ERROR"

	// SigLogReadFailure is emitted only by the file-level log reader, the
	// one component whose failure is fatal to the pipeline.
	SigLogReadFailure ErrorSignature = "LOG_READ_FAILURE"
)

// LineUnknown is the sentinel line number used when no source line could
// be determined.
const LineUnknown = "unknown"

// PrimaryErrorRecord is the normalized result of scanning one compiler log.
// It is produced once per log, never mutated, and always fully populated.
type PrimaryErrorRecord struct {
	RawMessage string         `json:"raw_error_message"`
	LineNumber string         `json:"error_line_in_tex"` // digits or "unknown"
	LogExcerpt string         `json:"log_excerpt"`
	Signature  ErrorSignature `json:"error_signature"`
}

// FindingKind identifies the class of structural problem a checker reports.
type FindingKind string

const (
	KindUnbalancedCurlyBraces    FindingKind = "UnbalancedCurlyBraces"
	KindUnbalancedParentheses    FindingKind = "UnbalancedParentheses"
	KindUnbalancedSquareBrackets FindingKind = "UnbalancedSquareBrackets"
	KindMismatchedPairedDelims   FindingKind = "MismatchedPairedDelimiters"
	KindMismatchedEnvironment    FindingKind = "MismatchedEnvironment"
	KindUnexpectedEnvironmentEnd FindingKind = "UnexpectedEnvironmentEnd"
	KindUnclosedEnvironment      FindingKind = "UnclosedEnvironment"
	KindEmptyMathBlock           FindingKind = "EmptyMathBlock"
	KindUnbalancedBracesInMath   FindingKind = "UnbalancedBracesInMath"
	KindTextInMathMode           FindingKind = "TextInMathMode"
	KindUnmatchedLeftRight       FindingKind = "UnmatchedLeftRight"
)

// PairCounts carries an open/close (or left/right) occurrence count pair.
type PairCounts struct {
	Open  int `json:"open"`
	Close int `json:"close"`
}

// DelimPair carries the opening delimiter character and the closing
// character actually found.
type DelimPair struct {
	Opening byte `json:"opening"`
	Closing byte `json:"closing"`
}

// EnvPair carries the expected and found environment names of a
// mismatched begin/end block.
type EnvPair struct {
	Expected string `json:"expected"`
	Found    string `json:"found"`
}

// Finding is the in-process tagged union for all structural checker
// results. Exactly the fields relevant to Kind are set; the rest are nil.
type Finding struct {
	Kind           FindingKind `json:"kind"`
	LineNumber     int         `json:"line_number"`
	Counts         *PairCounts `json:"counts,omitempty"`
	DelimChars     *DelimPair  `json:"delim_chars,omitempty"`
	EnvNames       *EnvPair    `json:"env_names,omitempty"`
	ProblemSnippet string      `json:"problem_snippet"`
	OriginalLine   string      `json:"original_line"`
}

// ActionableLead is the canonical normalized diagnostic record consumed by
// the downstream reporting/suggestion stage. All keys are snake_case; the
// line number is a string of digits > 0 or exactly "unknown".
type ActionableLead struct {
	ErrorType      string `json:"error_type"`
	LineNumber     string `json:"line_number"`
	ProblemSnippet string `json:"problem_snippet,omitempty"`
	LineContentRaw string `json:"line_content_raw,omitempty"`

	OpenCount  string `json:"open_count,omitempty"`
	CloseCount string `json:"close_count,omitempty"`

	LeftCount  string `json:"left_count,omitempty"`
	RightCount string `json:"right_count,omitempty"`

	OpeningDelimChar string `json:"opening_delim_char,omitempty"`
	ClosingDelimChar string `json:"closing_delim_char,omitempty"`

	EnvName         string `json:"env_name,omitempty"`
	ExpectedEnvName string `json:"expected_env_name,omitempty"`
	FoundEnvName    string `json:"found_env_name,omitempty"`

	MdFileForHint  string `json:"md_file_for_hint"`
	TexFileForHint string `json:"tex_file_for_hint"`

	// Extra retains unrecognized keys from checker output, snake-cased and
	// prefixed with "unknown_".
	Extra map[string]string `json:"extra,omitempty"`
}

// Suggestion is one remedy hint produced by the rule engine.
type Suggestion struct {
	Message    string  `json:"message"`
	Confidence float64 `json:"confidence"` // in [0, 1]
	Origin     string  `json:"origin"`
}

// ErrorCode classifies application-level failures.
type ErrorCode string

const (
	ErrLogRead      ErrorCode = "LOG_READ_ERROR"
	ErrRules        ErrorCode = "RULES_ERROR"
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError is the application error type carrying a code and an optional
// underlying cause.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}
