package checker

import (
	"regexp"
	"strings"

	"pandoc-debugger/internal/types"
)

// EnvironmentBalanceChecker verifies that \begin{...} and \end{...} blocks
// pair up and nest properly.
type EnvironmentBalanceChecker struct{}

// NewEnvironmentBalanceChecker creates an EnvironmentBalanceChecker.
func NewEnvironmentBalanceChecker() *EnvironmentBalanceChecker {
	return &EnvironmentBalanceChecker{}
}

// Name returns the checker identifier.
func (c *EnvironmentBalanceChecker) Name() string { return "environment_balance" }

// Environment names are alphanumeric with underscores and may carry a
// star (equation* and friends).
var envTokenRe = regexp.MustCompile(`\\(begin|end)\{([A-Za-z0-9_*]+)\}`)

type openEnv struct {
	name string
	line int
}

// Check walks every \begin/\end occurrence in source order with a stack.
//
// Three outcomes, checked in this order per token stream:
//   - an \end with no pending \begin is an unexpected environment end
//   - an \end whose name differs from the innermost \begin is a mismatch,
//     reported at the opener's line
//   - at EOF, a non-empty stack reports the oldest unclosed environment
func (c *EnvironmentBalanceChecker) Check(src string) (*types.Finding, error) {
	lines := strings.Split(src, "\n")
	var stack []openEnv

	for _, loc := range envTokenRe.FindAllStringSubmatchIndex(src, -1) {
		kind := src[loc[2]:loc[3]]
		name := src[loc[4]:loc[5]]
		line := 1 + strings.Count(src[:loc[0]], "\n")

		if kind == "begin" {
			stack = append(stack, openEnv{name: name, line: line})
			continue
		}

		if len(stack) == 0 {
			return &types.Finding{
				Kind:           types.KindUnexpectedEnvironmentEnd,
				LineNumber:     line,
				EnvNames:       &types.EnvPair{Found: name},
				ProblemSnippet: "\\end{" + name + "}",
				OriginalLine:   lineAt(lines, line),
			}, nil
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.name != name {
			return &types.Finding{
				Kind:           types.KindMismatchedEnvironment,
				LineNumber:     top.line,
				EnvNames:       &types.EnvPair{Expected: top.name, Found: name},
				ProblemSnippet: "\\begin{" + top.name + "} ... \\end{" + name + "}",
				OriginalLine:   lineAt(lines, top.line),
			}, nil
		}
	}

	if len(stack) > 0 {
		oldest := stack[0]
		return &types.Finding{
			Kind:           types.KindUnclosedEnvironment,
			LineNumber:     oldest.line,
			EnvNames:       &types.EnvPair{Expected: oldest.name},
			ProblemSnippet: "\\begin{" + oldest.name + "}",
			OriginalLine:   lineAt(lines, oldest.line),
		}, nil
	}
	return nil, nil
}
