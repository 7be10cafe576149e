package logscan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pandoc-debugger/internal/types"
)

// ============================================================================
// Extraction
// ============================================================================

func TestExtractUndefinedControlSequence(t *testing.T) {
	log := "This is pdfTeX, Version 3.141592653\n" +
		"! Undefined control sequence.\n" +
		"l.6 \\nonexistentcommand\n" +
		"The control sequence at the end of the top line\n"

	rec := NewExtractor(nil, 0, 0).Extract(log)

	assert.Equal(t, types.SigUndefinedControlSequence, rec.Signature)
	assert.Equal(t, "! Undefined control sequence.", rec.RawMessage)
	assert.Equal(t, "6", rec.LineNumber)
	assert.True(t, strings.HasPrefix(rec.LogExcerpt, "! Undefined control sequence."))
	assert.Contains(t, rec.LogExcerpt, "l.6")
}

func TestExtractEmptyLog(t *testing.T) {
	for _, log := range []string{"", "   \n\t\n"} {
		rec := NewExtractor(nil, 0, 0).Extract(log)
		assert.Equal(t, types.SigUnknownError, rec.Signature)
		assert.Equal(t, types.LineUnknown, rec.LineNumber)
		assert.Equal(t, "Log content was empty.", rec.LogExcerpt)
	}
}

func TestExtractNoAnchor(t *testing.T) {
	log := "This is pdfTeX\nOutput written on doc.pdf (1 page).\n"

	rec := NewExtractor(nil, 0, 0).Extract(log)

	assert.Equal(t, types.SigNoErrorMessage, rec.Signature)
	assert.Equal(t, "", rec.RawMessage)
	assert.Equal(t, types.LineUnknown, rec.LineNumber)
}

func TestExtractFirstAnchorWins(t *testing.T) {
	log := "! Missing $ inserted.\nl.3 x^2\n\n\n" +
		"! Undefined control sequence.\nl.9 \\foo\n"

	rec := NewExtractor(nil, 0, 0).Extract(log)

	assert.Equal(t, types.SigMissingDollar, rec.Signature)
	assert.Equal(t, "3", rec.LineNumber)
	assert.NotContains(t, rec.LogExcerpt, "Undefined control sequence")
}

func TestExtractStopsAtNextAnchor(t *testing.T) {
	log := "! Missing $ inserted.\nctx1\nctx2\n! Too many }'s.\nl.8\n"

	rec := NewExtractor(nil, 0, 0).Extract(log)

	assert.NotContains(t, rec.LogExcerpt, "Too many")
	// The second error's line marker must not bleed into the first record.
	assert.Equal(t, types.LineUnknown, rec.LineNumber)
}

func TestExtractStopsAtTerminalMarker(t *testing.T) {
	log := "! Missing $ inserted.\nctx\n" +
		"Here is how much of TeX's memory you used:\n 10 strings\n"

	rec := NewExtractor(nil, 0, 0).Extract(log)

	assert.NotContains(t, rec.LogExcerpt, "memory")
}

func TestExtractBlankLineEndsExcerptAfterThreeContextLines(t *testing.T) {
	log := "! Missing $ inserted.\nctx1\nctx2\nctx3\n\nafter\n"

	rec := NewExtractor(nil, 0, 0).Extract(log)

	assert.NotContains(t, rec.LogExcerpt, "after")
	assert.Contains(t, rec.LogExcerpt, "ctx3")
}

func TestExtractEarlyBlankLineKept(t *testing.T) {
	// A blank line inside the first three context lines does not end the
	// excerpt; TeX wraps messages with blank separators.
	log := "! Missing $ inserted.\nctx1\n\nl.4 x\nmore\n"

	rec := NewExtractor(nil, 0, 0).Extract(log)

	assert.Equal(t, "4", rec.LineNumber)
	assert.Contains(t, rec.LogExcerpt, "more")
}

func TestExtractLineMarkerWindow(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("! Missing $ inserted.\n")
	for i := 0; i < 11; i++ {
		sb.WriteString("context line\n")
	}
	sb.WriteString("l.42 too late\n")

	rec := NewExtractor(nil, 15, 10).Extract(sb.String())

	assert.Equal(t, types.LineUnknown, rec.LineNumber)
}

func TestExtractExcerptWindowBounded(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("! Missing $ inserted.\n")
	for i := 0; i < 30; i++ {
		sb.WriteString("noise\n")
	}

	rec := NewExtractor(nil, 15, 10).Extract(sb.String())

	// anchor + at most 15 context lines
	assert.LessOrEqual(t, len(strings.Split(rec.LogExcerpt, "\n")), 16)
}

// ============================================================================
// Composite overrides
// ============================================================================

func TestExtractCompositeMismatchedDelimiters(t *testing.T) {
	log := "! Missing \\right. inserted.\n" +
		"<inserted text>\n" +
		"l.12 \\left( \\frac{a}{b} \\right]\n"

	rec := NewExtractor(nil, 0, 0).Extract(log)

	assert.Equal(t, types.SigMismatchedDelimiters, rec.Signature)
	assert.Equal(t, "12", rec.LineNumber)
}

func TestExtractCompositeRunawayArgument(t *testing.T) {
	log := "! File ended while scanning use of \\frac.\n" +
		"Runaway argument?\n" +
		"{1 \\par\n"

	rec := NewExtractor(nil, 0, 0).Extract(log)

	assert.Equal(t, types.SigRunawayArgument, rec.Signature)
}

// ============================================================================
// File-level extraction
// ============================================================================

func TestExtractFileUnreadable(t *testing.T) {
	rec, err := NewExtractor(nil, 0, 0).ExtractFile("/nonexistent/path/doc.log")

	require.Error(t, err)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrLogRead, appErr.Code)
	assert.Equal(t, types.SigLogReadFailure, rec.Signature)
	assert.Equal(t, types.LineUnknown, rec.LineNumber)
}

func TestExtractFileReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.log")
	require.NoError(t, os.WriteFile(path, []byte("! Too many }'s.\nl.8 }\n"), 0644))

	rec, err := NewExtractor(nil, 0, 0).ExtractFile(path)

	require.NoError(t, err)
	assert.Equal(t, types.SigTooManyClosingBraces, rec.Signature)
	assert.Equal(t, "8", rec.LineNumber)
}
