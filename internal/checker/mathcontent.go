package checker

import (
	"regexp"
	"strings"

	"pandoc-debugger/internal/types"
)

// MathContentValidator runs an ordered battery of content checks inside
// each math region: emptiness, brace balance, prose leaking into math
// mode, and \left/\right count mismatches.
type MathContentValidator struct {
	allowed map[string]struct{}
}

// NewMathContentValidator creates a MathContentValidator with the built-in
// allowed-word list.
func NewMathContentValidator() *MathContentValidator {
	allowed := make(map[string]struct{}, len(mathWords))
	for _, w := range mathWords {
		allowed[w] = struct{}{}
	}
	return &MathContentValidator{allowed: allowed}
}

// Name returns the checker identifier.
func (c *MathContentValidator) Name() string { return "math_content" }

var (
	wordTokenRe  = regexp.MustCompile(`[a-zA-Z]{3,}`)
	leftTokenRe  = regexp.MustCompile(`\\left\s*[([{|.]`)
	rightTokenRe = regexp.MustCompile(`\\right\s*[)\]}|.]`)
	textArgRe    = regexp.MustCompile(`\\(?:text|textrm|textbf|textit|mbox|label|operatorname)\{[^}]*\}`)
)

// mathWords are identifiers legitimate as bare words in math mode:
// function names, Greek letters, common commands and environments. Word
// tokens outside this list are treated as prose.
var mathWords = []string{
	// greek
	"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta",
	"iota", "kappa", "lambda", "omicron", "rho", "sigma", "tau",
	"upsilon", "phi", "chi", "psi", "omega", "varepsilon", "vartheta",
	"varpi", "varrho", "varsigma", "varphi",
	// function names
	"sin", "cos", "tan", "cot", "sec", "csc", "arcsin", "arccos", "arctan",
	"sinh", "cosh", "tanh", "coth", "exp", "log", "det", "dim", "ker",
	"deg", "gcd", "hom", "arg", "sup", "inf", "lim", "liminf", "limsup",
	"max", "min", "mod", "bmod", "pmod",
	// operators
	"frac", "sqrt", "sum", "int", "oint", "prod", "coprod", "left", "right",
	"cdot", "cdots", "ldots", "dots", "vdots", "ddots", "times", "div",
	"ast", "star", "circ", "bullet", "cap", "cup", "uplus", "vee", "wedge",
	"setminus", "diamond", "oplus", "ominus", "otimes", "oslash", "odot",
	"dagger", "ddagger", "amalg",
	// relations
	"leq", "geq", "equiv", "models", "prec", "succ", "sim", "perp",
	"preceq", "succeq", "simeq", "mid", "parallel", "subset", "supset",
	"approx", "subseteq", "supseteq", "cong", "neq", "doteq", "propto",
	"vdash", "dashv", "notin",
	// arrows
	"leftarrow", "rightarrow", "uparrow", "downarrow", "leftrightarrow",
	"updownarrow", "mapsto", "gets", "implies", "iff",
	// symbols
	"infty", "nabla", "partial", "forall", "exists", "neg", "emptyset",
	"varnothing", "aleph", "hbar", "imath", "jmath", "ell", "prime",
	"angle", "triangle", "backslash",
	// accents and fonts
	"hat", "bar", "dot", "ddot", "vec", "tilde", "widehat", "widetilde",
	"overline", "underline", "overbrace", "underbrace", "mathbf", "mathit",
	"mathrm", "mathsf", "mathtt", "mathcal", "mathbb", "mathfrak",
	"boldsymbol", "text", "textrm", "textbf", "textit", "operatorname",
	// structure
	"quad", "qquad", "hspace", "vspace", "limits", "nolimits", "begin",
	"end", "label", "ref", "eqref", "cite", "displaystyle", "textstyle",
	"scriptstyle", "substack", "stackrel", "binom", "choose", "over",
	"atop",
	// environments
	"matrix", "pmatrix", "bmatrix", "vmatrix", "cases", "align", "aligned",
	"equation", "array", "gather", "gathered", "split",
	// sizing and fences
	"big", "bigg", "bigl", "bigr", "biggl", "biggr", "langle", "rangle",
	"lceil", "rceil", "lfloor", "rfloor", "vert",
}

// Check runs the battery on each explicitly delimited math region in
// order. Prose heuristics make no sense without real delimiters, so the
// whole-line fallback regions are not validated here. Within a region the
// checks are ordered from cheapest to most specific; the first hit wins.
func (c *MathContentValidator) Check(src string) (*types.Finding, error) {
	for _, region := range ExtractMathRegions(src) {
		if f := c.checkRegion(region); f != nil {
			return f, nil
		}
	}
	return nil, nil
}

func (c *MathContentValidator) checkRegion(region MathRegion) *types.Finding {
	content := region.Content

	if strings.TrimSpace(content) == "" {
		return &types.Finding{
			Kind:           types.KindEmptyMathBlock,
			LineNumber:     region.Line,
			ProblemSnippet: snippet(region.SourceLine),
			OriginalLine:   region.SourceLine,
		}
	}

	open := strings.Count(content, "{")
	close := strings.Count(content, "}")
	if open != close {
		return &types.Finding{
			Kind:           types.KindUnbalancedBracesInMath,
			LineNumber:     region.Line,
			Counts:         &types.PairCounts{Open: open, Close: close},
			ProblemSnippet: snippet(content),
			OriginalLine:   region.SourceLine,
		}
	}

	if tok := c.firstProseToken(content); tok != "" {
		return &types.Finding{
			Kind:           types.KindTextInMathMode,
			LineNumber:     region.Line,
			ProblemSnippet: tok,
			OriginalLine:   region.SourceLine,
		}
	}

	lefts := len(leftTokenRe.FindAllString(content, -1))
	rights := len(rightTokenRe.FindAllString(content, -1))
	if lefts != rights {
		return &types.Finding{
			Kind:           types.KindUnmatchedLeftRight,
			LineNumber:     region.Line,
			Counts:         &types.PairCounts{Open: lefts, Close: rights},
			ProblemSnippet: snippet(content),
			OriginalLine:   region.SourceLine,
		}
	}
	return nil
}

// firstProseToken finds the first lowercase word of three or more letters
// that is neither a command (backslash-prefixed) nor an allowed math word.
// Arguments of \text-like commands are prose on purpose and are skipped.
func (c *MathContentValidator) firstProseToken(content string) string {
	stripped := textArgRe.ReplaceAllString(content, " ")

	for _, loc := range wordTokenRe.FindAllStringIndex(stripped, -1) {
		tok := stripped[loc[0]:loc[1]]
		if loc[0] > 0 && stripped[loc[0]-1] == '\\' {
			continue
		}
		if tok != strings.ToLower(tok) {
			continue
		}
		if _, ok := c.allowed[tok]; ok {
			continue
		}
		return tok
	}
	return ""
}
