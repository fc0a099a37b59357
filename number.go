package holdex

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Statements from Swiss and European custodians group thousands with an
// apostrophe or a space and use a period for decimals: 19'464'431.00,
// 19 464 431. The normalizer accepts both and rejects tokens whose grouping
// is internally inconsistent rather than guessing at a value.

// groupedNumberRegex locates a grouped numeric token: at least one grouping
// separator before the final three digits, with an optional 1-2 digit
// fraction. Plain ungrouped numbers deliberately do not match; a bare "2027"
// in a maturity is not a market value.
var groupedNumberRegex = regexp.MustCompile(`\d{1,3}(?:['\x{2019} ]\d{3})+(?:\.\d{1,2})?`)

// plainDecimalRegex locates an ungrouped decimal such as a unit price
// (100.52) or a rate. Used for secondary attributes only.
var plainDecimalRegex = regexp.MustCompile(`\d+\.\d{1,4}`)

// ParseAmount normalizes a raw numeric token into an exact decimal value.
//
// Grouping separators (apostrophe, right single quote, or space) are
// stripped after their consistency is checked: the leading group must have
// 1-3 digits and every following group exactly 3. The last period-delimited
// segment is kept as the fractional part when it has 1 or 2 digits;
// otherwise the whole token is read as an integer.
//
// Malformed grouping (e.g. 12'3'456) is an error, never a silent wrong
// number.
func ParseAmount(token string) (decimal.Decimal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return decimal.Zero, fmt.Errorf("empty numeric token")
	}

	intPart, fracPart := token, ""
	if i := strings.LastIndex(token, "."); i >= 0 {
		frac := token[i+1:]
		if n := len(frac); n >= 1 && n <= 2 && digitsOnly(frac) {
			intPart, fracPart = token[:i], frac
		} else {
			// Not a plausible fraction: fold the digits into the integer.
			intPart = strings.ReplaceAll(token, ".", "")
		}
	}

	digits, err := ungroup(intPart)
	if err != nil {
		return decimal.Zero, err
	}

	canonical := digits
	if fracPart != "" {
		canonical += "." + fracPart
	}
	d, err := decimal.NewFromString(canonical)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot parse numeric token %q: %w", token, err)
	}
	return d, nil
}

// ungroup validates the grouping of an integer part and returns its bare
// digits.
func ungroup(s string) (string, error) {
	groups := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\'' || r == '’' || r == ' '
	})
	if len(groups) == 0 {
		return "", fmt.Errorf("no digits in numeric token %q", s)
	}
	for i, g := range groups {
		if !digitsOnly(g) {
			return "", fmt.Errorf("non-digit group %q in numeric token %q", g, s)
		}
		if len(groups) == 1 {
			// no separators at all: any digit run is fine
			continue
		}
		if i == 0 {
			if len(g) < 1 || len(g) > 3 {
				return "", fmt.Errorf("inconsistent grouping in numeric token %q", s)
			}
			continue
		}
		if len(g) != 3 {
			return "", fmt.Errorf("inconsistent grouping in numeric token %q", s)
		}
	}
	return strings.Join(groups, ""), nil
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// findGroupedNumber returns the first grouped numeric token in the line and
// true, or "" and false. The regexp match is widened to the maximal run of
// digits, apostrophes and periods around it, so a malformed token like
// 12'3'456 is captured whole and fails normalization instead of yielding a
// partial, wrong number.
func findGroupedNumber(text string) (string, bool) {
	loc := groupedNumberRegex.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	from, to := loc[0], loc[1]
	for from > 0 && isTokenByte(text[from-1]) {
		from--
	}
	for to < len(text) && isTokenByte(text[to]) {
		to++
	}
	return strings.Trim(text[from:to], "'."), true
}

// isTokenByte matches the characters a numeric token may extend over. Space
// is excluded on purpose: spaces also separate columns in linearized text.
func isTokenByte(b byte) bool {
	return b >= '0' && b <= '9' || b == '\'' || b == '.'
}
