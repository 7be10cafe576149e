package logscan

import (
	"regexp"
	"strings"

	"pandoc-debugger/internal/logger"
	"pandoc-debugger/internal/textio"
	"pandoc-debugger/internal/types"
)

// Terminal markers ending an error excerpt. TeX prints these after the
// last reported error, so context past them belongs to no error.
const (
	markerMemory  = "Here is how much of TeX's memory"
	markerNoPages = "No pages of output."
)

var lineMarkerRe = regexp.MustCompile(`^l\.(\d+)`)

// Extractor scans a compiler log for its first "! " error and builds a
// normalized primary error record.
type Extractor struct {
	table            *PatternTable
	excerptWindow    int
	lineSearchWindow int
}

// NewExtractor creates an Extractor. A nil table selects the built-in
// signature rules; non-positive windows select the defaults.
func NewExtractor(table *PatternTable, excerptWindow, lineSearchWindow int) *Extractor {
	if table == nil {
		table = MustDefaultTable()
	}
	if excerptWindow <= 0 {
		excerptWindow = 15
	}
	if lineSearchWindow <= 0 {
		lineSearchWindow = 10
	}
	return &Extractor{
		table:            table,
		excerptWindow:    excerptWindow,
		lineSearchWindow: lineSearchWindow,
	}
}

// Extract scans log text and returns a fully populated record. Extraction
// never fails: an empty log and a log without any "! " line both yield a
// well-formed record with their own signatures.
func (e *Extractor) Extract(logText string) types.PrimaryErrorRecord {
	if strings.TrimSpace(logText) == "" {
		return types.PrimaryErrorRecord{
			RawMessage: "No error message found",
			LineNumber: types.LineUnknown,
			LogExcerpt: "Log content was empty.",
			Signature:  types.SigUnknownError,
		}
	}

	lines := strings.Split(logText, "\n")
	anchorIdx := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "! ") {
			anchorIdx = i
			break
		}
	}

	if anchorIdx < 0 {
		logger.Debug("no error anchor found in log", logger.Int("lines", len(lines)))
		return types.PrimaryErrorRecord{
			RawMessage: "",
			LineNumber: types.LineUnknown,
			LogExcerpt: "No standard LaTeX error messages (lines starting with '!') found in the log.",
			Signature:  types.SigNoErrorMessage,
		}
	}

	anchor := strings.TrimSpace(lines[anchorIdx])
	excerptLines := []string{anchor}
	lineNumber := types.LineUnknown
	contextCount := 0

	for j := 1; j <= e.excerptWindow && anchorIdx+j < len(lines); j++ {
		context := lines[anchorIdx+j]
		trimmed := strings.TrimSpace(context)

		// A blank line ends the excerpt once enough context is in, as does
		// the next error or a terminal marker.
		if trimmed == "" && contextCount >= 3 {
			break
		}
		if strings.HasPrefix(context, "! ") ||
			strings.HasPrefix(context, markerMemory) ||
			strings.HasPrefix(context, markerNoPages) {
			break
		}

		if lineNumber == types.LineUnknown && j <= e.lineSearchWindow {
			if m := lineMarkerRe.FindStringSubmatch(trimmed); m != nil {
				lineNumber = m[1]
			}
		}

		excerptLines = append(excerptLines, strings.TrimRight(context, " \t\r"))
		contextCount++
	}

	excerpt := strings.Join(excerptLines, "\n")
	signature := e.table.Classify(anchor)

	// Composite patterns span the anchor and its context, so they override
	// the anchor-only classification.
	if strings.Contains(excerpt, `\left(`) && strings.Contains(excerpt, `\right]`) {
		signature = types.SigMismatchedDelimiters
	} else if strings.Contains(excerpt, "Runaway argument") {
		signature = types.SigRunawayArgument
	}

	logger.Debug("primary error extracted",
		logger.String("signature", string(signature)),
		logger.String("line", lineNumber))

	return types.PrimaryErrorRecord{
		RawMessage: anchor,
		LineNumber: lineNumber,
		LogExcerpt: excerpt,
		Signature:  signature,
	}
}

// ExtractFile reads a log file and extracts its primary error. An unreadable
// log is the one fatal input: the returned record carries the failure
// signature and the error is non-nil.
func (e *Extractor) ExtractFile(path string) (types.PrimaryErrorRecord, error) {
	content, err := textio.ReadFile(path)
	if err != nil {
		logger.Error("failed to read log file", err, logger.String("path", path))
		return types.PrimaryErrorRecord{
			RawMessage: "Could not read log file",
			LineNumber: types.LineUnknown,
			LogExcerpt: "Error: could not read log file " + path,
			Signature:  types.SigLogReadFailure,
		}, types.NewAppError(types.ErrLogRead, "failed to read log file "+path, err)
	}
	return e.Extract(content), nil
}
