package checker

import (
	"regexp"
	"sort"
	"strings"
)

// MathRegion is one span of math-mode content with its 1-based source line.
type MathRegion struct {
	Content    string
	Line       int
	SourceLine string
}

// Math delimiter pairs never span lines; each pattern is applied per line.
var mathSpanRes = []*regexp.Regexp{
	regexp.MustCompile(`\\\((.+?)\\\)`),
	regexp.MustCompile(`\\\[(.+?)\\\]`),
	regexp.MustCompile(`\$\$?(.+?)\$\$?`),
}

// mathLineMarkers flags lines worth checking when no delimited math region
// exists. Pandoc-produced TeX sometimes loses the math delimiters around a
// broken formula, so bare lines with math commands still get inspected.
var mathLineMarkers = []string{
	`\left`, `\right`, `\frac`, `\sqrt`, `\sum`, `\int`, `\text{`, `\label{`,
}

// ExtractMathRegions finds explicitly delimited math regions, line by line,
// ordered by source position.
func ExtractMathRegions(src string) []MathRegion {
	var regions []MathRegion
	for i, line := range strings.Split(src, "\n") {
		type span struct {
			start   int
			content string
		}
		var spans []span
		for _, re := range mathSpanRes {
			for _, loc := range re.FindAllStringSubmatchIndex(line, -1) {
				spans = append(spans, span{start: loc[2], content: line[loc[2]:loc[3]]})
			}
		}
		sort.Slice(spans, func(a, b int) bool { return spans[a].start < spans[b].start })
		for _, s := range spans {
			regions = append(regions, MathRegion{
				Content:    s.content,
				Line:       i + 1,
				SourceLine: line,
			})
		}
	}
	return regions
}

// ExtractMathRegionsWithFallback returns the delimited regions when any
// exist, and otherwise whole lines that look like math. The fallback is for
// raw delimiter counting only; content validation requires real delimiters.
func ExtractMathRegionsWithFallback(src string) []MathRegion {
	if regions := ExtractMathRegions(src); len(regions) > 0 {
		return regions
	}
	var regions []MathRegion
	for i, line := range strings.Split(src, "\n") {
		if looksLikeMath(line) {
			regions = append(regions, MathRegion{
				Content:    line,
				Line:       i + 1,
				SourceLine: line,
			})
		}
	}
	return regions
}

func looksLikeMath(line string) bool {
	for _, m := range mathLineMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return strings.ContainsAny(line, "{}()[]")
}

func lineAt(lines []string, n int) string {
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// snippet shortens region content for reporting.
func snippet(s string) string {
	s = strings.TrimSpace(s)
	const max = 80
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
