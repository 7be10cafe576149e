package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pandoc-debugger/internal/checker"
	"pandoc-debugger/internal/lead"
	"pandoc-debugger/internal/types"
)

// ============================================================================
// End-to-end diagnosis
// ============================================================================

func TestDiagnoseUndefinedControlSequence(t *testing.T) {
	log := "! Undefined control sequence.\nl.6 \\nonexistentcommand\n"

	report := New(Options{}).Diagnose(log, "")

	assert.Equal(t, types.SigUndefinedControlSequence, report.Primary.Signature)
	assert.Equal(t, "6", report.Primary.LineNumber)
	// Not a structural signature, so no checkers ran.
	assert.Empty(t, report.Findings)
	require.NotNil(t, report.Lead)
	assert.Equal(t, "undefined_control_sequence", report.Lead.ErrorType)
	assert.Equal(t, "6", report.Lead.LineNumber)
	require.NotEmpty(t, report.Suggestions)
	assert.Contains(t, report.Suggestions[0].Message, "line 6")
}

func TestDiagnoseStructuralRefinement(t *testing.T) {
	log := "! Extra }, or forgotten $.\nl.2 }\n"
	src := "Intro.\nf(x) = \\frac{1}{1 + e^{-x}\n"

	report := New(Options{Hints: lead.Hints{TexFile: "doc.tex"}}).Diagnose(log, src)

	assert.Equal(t, types.SigUnbalancedBraces, report.Primary.Signature)
	require.NotEmpty(t, report.Findings)
	assert.Equal(t, types.KindUnbalancedCurlyBraces, report.Findings[0].Kind)
	require.NotNil(t, report.Lead)
	assert.Equal(t, "unbalanced_curly_braces", report.Lead.ErrorType)
	assert.Equal(t, "2", report.Lead.LineNumber)
	assert.Equal(t, "doc.tex", report.Lead.TexFileForHint)
}

func TestDiagnoseGateSkipsCheckersForNonStructural(t *testing.T) {
	log := "! LaTeX Error: File `missing.sty' not found.\nl.3\n"
	src := "f(x) = \\frac{1}{1 + e^{-x}\n" // would trip the checkers

	report := New(Options{}).Diagnose(log, src)

	assert.Equal(t, types.SigFileNotFound, report.Primary.Signature)
	assert.Empty(t, report.Findings)
	require.NotNil(t, report.Lead)
	assert.Equal(t, "file_not_found", report.Lead.ErrorType)
}

func TestDiagnoseNoErrorMessage(t *testing.T) {
	log := "This is pdfTeX\nOutput written on doc.pdf\n"

	report := New(Options{}).Diagnose(log, "clean source\n")

	assert.Equal(t, types.SigNoErrorMessage, report.Primary.Signature)
	assert.Empty(t, report.Findings)
	assert.Nil(t, report.Lead)
}

func TestDiagnoseNoErrorMessageWithBrokenSource(t *testing.T) {
	// A log without errors still gets the source checked: pandoc failures
	// sometimes leave no usable log at all.
	log := "nothing useful here\n"
	src := "\\begin{foo}\ncontent\n"

	report := New(Options{}).Diagnose(log, src)

	assert.Equal(t, types.SigNoErrorMessage, report.Primary.Signature)
	require.NotEmpty(t, report.Findings)
	assert.Equal(t, types.KindUnclosedEnvironment, report.Findings[0].Kind)
	require.NotNil(t, report.Lead)
	assert.Equal(t, "unclosed_environment", report.Lead.ErrorType)
	assert.Equal(t, "foo", report.Lead.EnvName)
}

func TestDiagnoseEmptyLog(t *testing.T) {
	report := New(Options{}).Diagnose("", "")

	assert.Equal(t, types.SigUnknownError, report.Primary.Signature)
	require.NotNil(t, report.Lead)
	assert.Equal(t, "unknown_error", report.Lead.ErrorType)
	assert.Equal(t, types.LineUnknown, report.Lead.LineNumber)
}

func TestDiagnoseCollectAllStrategy(t *testing.T) {
	log := "! Extra }, or forgotten $.\n"
	src := "\\( {a \\)\n\\begin{foo}\n"

	report := New(Options{Strategy: checker.CollectAll}).Diagnose(log, src)

	// brace imbalance and unclosed environment both reported
	assert.GreaterOrEqual(t, len(report.Findings), 2)
}

// ============================================================================
// File-level diagnosis
// ============================================================================

func TestDiagnoseFilesUnreadableLogIsFatal(t *testing.T) {
	report, err := New(Options{}).DiagnoseFiles("/nonexistent/doc.log", "")

	require.Error(t, err)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrLogRead, appErr.Code)
	assert.Equal(t, types.SigLogReadFailure, report.Primary.Signature)
}

func TestDiagnoseFilesUnreadableSourceDegrades(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "doc.log")
	require.NoError(t, os.WriteFile(logPath, []byte("! Extra }, or forgotten $.\n"), 0644))

	report, err := New(Options{}).DiagnoseFiles(logPath, filepath.Join(dir, "missing.tex"))

	require.NoError(t, err)
	assert.Equal(t, types.SigUnbalancedBraces, report.Primary.Signature)
	assert.Empty(t, report.Findings)
	require.NotNil(t, report.Lead)
}

func TestDiagnoseFilesFull(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "doc.log")
	srcPath := filepath.Join(dir, "doc.tex")
	require.NoError(t, os.WriteFile(logPath,
		[]byte("! Missing \\right. inserted.\nl.3 \\left( \\frac{a}{b} \\right]\n"), 0644))
	require.NoError(t, os.WriteFile(srcPath,
		[]byte("\\documentclass{article}\n\\begin{document}\n\\( \\left( \\frac{a}{b} \\right] \\)\n\\end{document}\n"), 0644))

	report, err := New(Options{}).DiagnoseFiles(logPath, srcPath)

	require.NoError(t, err)
	assert.Equal(t, types.SigMismatchedDelimiters, report.Primary.Signature)
	assert.Equal(t, "3", report.Primary.LineNumber)
	require.NotEmpty(t, report.Findings)
	assert.Equal(t, types.KindMismatchedPairedDelims, report.Findings[0].Kind)
	require.NotNil(t, report.Lead)
	assert.Equal(t, "(", report.Lead.OpeningDelimChar)
	assert.Equal(t, "]", report.Lead.ClosingDelimChar)
	require.NotEmpty(t, report.Suggestions)
}
