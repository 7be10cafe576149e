// Package suggest matches remedy rules against a log excerpt and produces
// human-readable suggestions. Rules live in a YAML file and are compiled
// once at load; a malformed rule set is a fatal configuration error.
package suggest

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"pandoc-debugger/internal/logger"
	"pandoc-debugger/internal/types"
)

// DefaultConfidence applies when a rule omits its confidence.
const DefaultConfidence = 0.5

// LinePlaceholder in a rule message is replaced with the error line number.
const LinePlaceholder = "%%ERROR_LINE%%"

// Rule is one suggestion rule as written in the YAML rules file.
type Rule struct {
	Name       string  `yaml:"name"`
	Pattern    string  `yaml:"pattern"`
	MatchType  string  `yaml:"match_type"` // "string" (default) or "regex"
	Message    string  `yaml:"message"`
	Confidence float64 `yaml:"confidence"`
	OriginTag  string  `yaml:"origin_tag"`
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

type compiledRule struct {
	rule    Rule
	pattern string         // lowered, for string rules
	re      *regexp.Regexp // nil for string rules
}

// RuleSet is a compiled, validated set of suggestion rules.
type RuleSet struct {
	rules []compiledRule
}

// Len returns the number of rules in the set.
func (rs *RuleSet) Len() int { return len(rs.rules) }

// Compile validates rules and compiles their patterns. Validation is
// strict: one bad rule rejects the whole set, so a broken rules file never
// half-works.
func Compile(rules []Rule) (*RuleSet, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		ident := r.Name
		if ident == "" {
			ident = fmt.Sprintf("rule #%d", i+1)
		}
		if r.Pattern == "" {
			return nil, types.NewAppErrorWithDetails(types.ErrRules,
				"suggestion rule has empty pattern", ident, nil)
		}
		if r.Message == "" {
			return nil, types.NewAppErrorWithDetails(types.ErrRules,
				"suggestion rule has empty message", ident, nil)
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			return nil, types.NewAppErrorWithDetails(types.ErrRules,
				"suggestion rule confidence out of range", ident, nil)
		}
		if r.Confidence == 0 {
			r.Confidence = DefaultConfidence
		}
		if r.OriginTag == "" {
			r.OriginTag = r.Name
		}

		switch r.MatchType {
		case "", "string":
			compiled = append(compiled, compiledRule{rule: r, pattern: strings.ToLower(r.Pattern)})
		case "regex":
			re, err := regexp.Compile("(?i)" + r.Pattern)
			if err != nil {
				return nil, types.NewAppErrorWithDetails(types.ErrRules,
					"suggestion rule has invalid regex", fmt.Sprintf("%s: %v", ident, err), nil)
			}
			compiled = append(compiled, compiledRule{rule: r, re: re})
		default:
			return nil, types.NewAppErrorWithDetails(types.ErrRules,
				"suggestion rule has unknown match type", fmt.Sprintf("%s: %q", ident, r.MatchType), nil)
		}
	}
	return &RuleSet{rules: compiled}, nil
}

// LoadRulesFromBytes parses and compiles a YAML rules document.
func LoadRulesFromBytes(data []byte) (*RuleSet, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, types.NewAppError(types.ErrRules, "failed to parse rules file", err)
	}
	return Compile(f.Rules)
}

// LoadRules reads and compiles a YAML rules file. Any failure here is
// fatal to the caller: running with a silently empty rule set would turn
// every diagnosis into "no suggestions".
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read rules file", err, logger.String("path", path))
		return nil, types.NewAppError(types.ErrRules, "failed to read rules file "+path, err)
	}
	rs, err := LoadRulesFromBytes(data)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded suggestion rules", logger.String("path", path), logger.Int("count", rs.Len()))
	return rs, nil
}

// DefaultRules returns the built-in rule set used when no rules file is
// configured.
func DefaultRules() *RuleSet {
	rs, err := Compile([]Rule{
		{
			Name:       "missing_dollar",
			Pattern:    `Missing \$ inserted`,
			MatchType:  "regex",
			Message:    "Math content appears outside math mode. Add a $ at line " + LinePlaceholder + " or wrap the expression in \\( ... \\).",
			Confidence: 0.9,
			OriginTag:  "builtin",
		},
		{
			Name:       "undefined_control_sequence",
			Pattern:    "Undefined control sequence",
			Message:    "An unknown command is used near line " + LinePlaceholder + ". Check the spelling or load the package that defines it.",
			Confidence: 0.9,
			OriginTag:  "builtin",
		},
		{
			Name:       "extra_brace",
			Pattern:    "Too many }'s",
			Message:    "There is an extra closing brace near line " + LinePlaceholder + ". Remove it or add the matching opening brace.",
			Confidence: 0.8,
			OriginTag:  "builtin",
		},
		{
			Name:       "unbalanced_braces",
			Pattern:    "Extra }, or forgotten $",
			Message:    "Braces or math delimiters are unbalanced near line " + LinePlaceholder + ".",
			Confidence: 0.7,
			OriginTag:  "builtin",
		},
		{
			Name:       "undefined_environment",
			Pattern:    `Environment .* undefined`,
			MatchType:  "regex",
			Message:    "The document uses an environment that is not defined. Load the package providing it or fix the name at line " + LinePlaceholder + ".",
			Confidence: 0.8,
			OriginTag:  "builtin",
		},
		{
			Name:       "file_not_found",
			Pattern:    `File .* not found`,
			MatchType:  "regex",
			Message:    "An input file or image could not be found. Check the path referenced near line " + LinePlaceholder + ".",
			Confidence: 0.8,
			OriginTag:  "builtin",
		},
		{
			Name:       "runaway_argument",
			Pattern:    "Runaway argument",
			Message:    "A command argument is never closed. Look for a missing closing brace starting at line " + LinePlaceholder + ".",
			Confidence: 0.7,
			OriginTag:  "builtin",
		},
		{
			Name:       "mismatched_delimiters",
			Pattern:    `\\left\(.*?\\right\]`,
			MatchType:  "regex",
			Message:    "A \\left( is closed by \\right]. Make the delimiters match near line " + LinePlaceholder + ".",
			Confidence: 0.8,
			OriginTag:  "builtin",
		},
	})
	if err != nil {
		panic(err)
	}
	return rs
}
