package holdex

import "strings"

// Line is one record of the linearized document: a zero-based index and the
// trimmed text found there. Lines are immutable for the lifetime of a run.
type Line struct {
	Index int
	Text  string
}

// SplitLines turns the raw document text into the ordered line sequence the
// rest of the pipeline addresses by index. Whitespace is trimmed per line but
// blank lines are kept: blank-line runs delimit summary sections.
func SplitLines(text string) []Line {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]Line, len(raw))
	for i, t := range raw {
		lines[i] = Line{Index: i, Text: strings.TrimSpace(t)}
	}
	return lines
}

// IsBlank reports whether the line holds no text at all.
func (l Line) IsBlank() bool { return l.Text == "" }
