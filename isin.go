package holdex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// isinRegex checks the strict structure: 2 letters, 9 alphanumeric, 1 digit.
var isinRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// isinScanRegex locates identifier-shaped substrings inside a line. Boundary
// checks are done separately because Go regexps have no lookaround.
var isinScanRegex = regexp.MustCompile(`[A-Z]{2}[A-Z0-9]{10}`)

// Anchor is a detected identifier occurrence at a specific line.
type Anchor struct {
	Code string
	Line int
}

// ValidateISIN checks if a string is a validly formatted ISIN, including its
// check digit. It returns nil if valid, or a descriptive error if invalid.
func ValidateISIN(isin string) error {
	// 1. Length validation
	if len(isin) != 12 {
		return fmt.Errorf("invalid length: must be 12 characters, got %d", len(isin))
	}

	// 2. Format validation
	if !isinRegex.MatchString(isin) {
		return fmt.Errorf("invalid format: must be 2 uppercase letters, 9 alphanumeric chars, and 1 digit")
	}

	// 3. Convert letters to numbers for check digit calculation
	var numericStr strings.Builder
	for _, char := range isin[:11] {
		if char >= 'A' && char <= 'Z' {
			numericStr.WriteString(strconv.Itoa(int(char - 'A' + 10)))
		} else {
			numericStr.WriteRune(char)
		}
	}

	// 4. Apply a variation of the Luhn algorithm
	sum := 0
	isSecond := true
	digits := numericStr.String()
	for i := len(digits) - 1; i >= 0; i-- {
		digit, _ := strconv.Atoi(string(digits[i]))

		if isSecond {
			digit *= 2
		}

		sum += (digit / 10) + (digit % 10)
		isSecond = !isSecond
	}

	// 5. Validate the check digit
	expectedCheckDigit := (10 - (sum % 10)) % 10
	actualCheckDigit, _ := strconv.Atoi(string(isin[11]))

	if expectedCheckDigit != actualCheckDigit {
		return fmt.Errorf("invalid check digit: expected %d, got %d", expectedCheckDigit, actualCheckDigit)
	}

	return nil
}

// FindCode scans one line for the first identifier-shaped substring bounded by
// non-alphanumeric characters or the line edges. It returns the code and true,
// or "" and false when the line carries none.
//
// When validate is set, shape matches with a wrong check digit are skipped and
// the scan continues on the rest of the line.
func FindCode(text string, validate bool) (string, bool) {
	for _, loc := range isinScanRegex.FindAllStringIndex(text, -1) {
		if !isolated(text, loc[0], loc[1]) {
			continue
		}
		code := text[loc[0]:loc[1]]
		if validate && ValidateISIN(code) != nil {
			continue
		}
		return code, true
	}
	return "", false
}

// isolated reports whether text[from:to] is bounded by non-alphanumeric
// characters or the string edges.
func isolated(text string, from, to int) bool {
	if from > 0 && isAlnum(text[from-1]) {
		return false
	}
	if to < len(text) && isAlnum(text[to]) {
		return false
	}
	return true
}

func isAlnum(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// FindAnchors scans the line sequence and yields one Anchor per line carrying
// an identifier, in ascending line order. The scan is stateless: running it
// twice on the same lines yields the same anchors. Empty input yields an
// empty result, not an error.
func FindAnchors(lines []Line, validate bool) []Anchor {
	var anchors []Anchor
	for _, l := range lines {
		if code, ok := FindCode(l.Text, validate); ok {
			anchors = append(anchors, Anchor{Code: code, Line: l.Index})
		}
	}
	return anchors
}
