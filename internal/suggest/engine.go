package suggest

import (
	"strings"

	"pandoc-debugger/internal/logger"
	"pandoc-debugger/internal/types"
)

// Engine applies a compiled rule set to log excerpts.
type Engine struct {
	rules *RuleSet
}

// NewEngine creates an Engine. A nil rule set selects the built-in rules.
func NewEngine(rules *RuleSet) *Engine {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Engine{rules: rules}
}

// Apply matches every rule against the excerpt and returns all matching
// suggestions in rule order. errorLine replaces the line placeholder in
// messages; pass "unknown" when no line was determined.
func (e *Engine) Apply(excerpt, errorLine string) []types.Suggestion {
	if errorLine == "" {
		errorLine = types.LineUnknown
	}
	lower := strings.ToLower(excerpt)

	var out []types.Suggestion
	for _, c := range e.rules.rules {
		matched := false
		if c.re != nil {
			matched = c.re.MatchString(excerpt)
		} else {
			matched = strings.Contains(lower, c.pattern)
		}
		if !matched {
			continue
		}
		out = append(out, types.Suggestion{
			Message:    strings.ReplaceAll(c.rule.Message, LinePlaceholder, errorLine),
			Confidence: c.rule.Confidence,
			Origin:     c.rule.OriginTag,
		})
	}
	logger.Debug("suggestion rules applied",
		logger.Int("rules", e.rules.Len()), logger.Int("matches", len(out)))
	return out
}
