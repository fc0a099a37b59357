package holdex

import "strings"

// summaryClassifier flags the lines whose numeric content represents an
// aggregate rather than an individual holding. Its output is a set of line
// indices the resolver and the reconciler must not draw values from.
type summaryClassifier struct {
	cfg Config
}

// excluded returns the full exclusion set: every line inside a summary
// section, plus numeric lines within KeywordDistance of a total keyword.
func (s summaryClassifier) excluded(lines []Line) map[int]bool {
	out := make(map[int]bool)

	// Rule: summary sections are excluded wholesale.
	for _, span := range s.sections(lines) {
		for i := span[0]; i <= span[1]; i++ {
			out[i] = true
		}
	}

	// Rule: a total keyword taints the nearest numeric token. The keyword's
	// own line wins; neighbors within KeywordDistance are only searched when
	// the keyword line carries no number, so an adjacent detail row is not
	// swallowed by its section total.
	d := s.cfg.KeywordDistance
	for _, l := range lines {
		if !containsAny(l.Text, s.cfg.TotalKeywords) {
			continue
		}
		if _, ok := findGroupedNumber(l.Text); ok {
			out[l.Index] = true
			continue
		}
		for off := 1; off <= d; off++ {
			if j := l.Index + off; j < len(lines) {
				if _, ok := findGroupedNumber(lines[j].Text); ok {
					out[j] = true
					break
				}
			}
			if j := l.Index - off; j >= 0 {
				if _, ok := findGroupedNumber(lines[j].Text); ok {
					out[j] = true
					break
				}
			}
		}
	}
	return out
}

// sections finds summary section spans: a start keyword opens one, an end
// keyword or a run of BlankRun blank lines closes it. Spans are inclusive on
// both ends and never nest.
func (s summaryClassifier) sections(lines []Line) [][2]int {
	var spans [][2]int
	open := -1
	blanks := 0
	for _, l := range lines {
		if open < 0 {
			if containsAny(l.Text, s.cfg.SectionStartKeywords) {
				open = l.Index
				blanks = 0
			}
			continue
		}
		if l.IsBlank() {
			blanks++
			if blanks >= s.cfg.BlankRun {
				spans = append(spans, [2]int{open, l.Index})
				open = -1
			}
			continue
		}
		blanks = 0
		if containsAny(l.Text, s.cfg.SectionEndKeywords) {
			spans = append(spans, [2]int{open, l.Index})
			open = -1
		}
	}
	if open >= 0 {
		spans = append(spans, [2]int{open, len(lines) - 1})
	}
	return spans
}

// containsAny reports a case-insensitive substring match against any keyword.
func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
