package holdex

import (
	"regexp"
	"strconv"
	"strings"
)

// percentRegex locates a rate or weight token such as "3.25%" or "1.95 %".
var percentRegex = regexp.MustCompile(`(\d{1,3}(?:\.\d{1,4})?)\s?%`)

// maturityRegex locates a dd.mm.yy or dd.mm.yyyy date, the maturity format
// custodians print inside bond descriptions.
var maturityRegex = regexp.MustCompile(`\b\d{2}\.\d{2}\.(?:\d{4}|\d{2})\b`)

// resolveHolding builds one Holding from an anchor: a name from the backward
// window, a value from the forward window, and whatever secondary attributes
// the same lines yield. It never fails; missing pieces lower the confidence.
func resolveHolding(lines []Line, a Anchor, cfg Config, excluded map[int]bool) Holding {
	h := Holding{
		Code:       a.Code,
		Confidence: High,
		SourceLine: a.Line,
		ValueLine:  -1,
	}

	nameLine := -1
	h.Name, nameLine = resolveName(lines, a, cfg, excluded)
	if h.Name == "" {
		h.Confidence = h.Confidence.Downgrade()
	}

	resolveValue(lines, a, cfg, excluded, &h)

	// Secondary attributes live in the anchor's own line and the name line:
	// custodians append coupon and maturity to the bond description.
	for _, i := range []int{a.Line, nameLine} {
		if i < 0 {
			continue
		}
		text := lines[i].Text
		if h.Maturity == "" {
			h.Maturity = maturityRegex.FindString(text)
		}
		if h.Coupon == nil {
			if p, ok := findPercent(text); ok {
				h.Coupon = &p
			}
		}
	}
	return h
}

// resolveName scans backward from the anchor for the most plausible
// descriptive line. It returns the name and its line index, or "" and -1.
func resolveName(lines []Line, a Anchor, cfg Config, excluded map[int]bool) (string, int) {
	for i := a.Line - 1; i >= a.Line-cfg.NameWindow && i >= 0; i-- {
		if excluded[i] {
			continue
		}
		text := lines[i].Text
		if len(text) <= 10 {
			continue
		}
		if _, ok := FindCode(text, false); ok {
			continue
		}
		if containsAny(text, cfg.AuxMarkers) {
			continue
		}
		if containsCurrencyCode(text) {
			continue
		}
		if isNumericNoise(text) {
			continue
		}
		return text, i
	}
	return "", -1
}

// resolveValue scans forward from the anchor for the first grouped numeric
// token with a currency code loosely adjacent to it: on the same line, or on
// an earlier line of the same window (statements often print "Currency: USD"
// one line above the value). It fills the holding's currency, value and the
// value line's secondary attributes. A line that qualifies but fails
// normalization still ends the scan: the value stays nil and the confidence
// drops to Low rather than risking a wrong number from a later line.
func resolveValue(lines []Line, a Anchor, cfg Config, excluded map[int]bool, h *Holding) {
	seen := currencyCodeIn(lines[a.Line].Text)
	for i := a.Line + 1; i <= a.Line+cfg.ValueWindow && i < len(lines); i++ {
		if excluded[i] {
			continue
		}
		text := lines[i].Text
		code := currencyCodeIn(text)
		if code == "" {
			code = seen
		} else {
			seen = code
		}
		tok, ok := findGroupedNumber(text)
		if !ok || code == "" {
			continue
		}

		h.Currency = code
		h.ValueLine = i
		amount, err := ParseAmount(tok)
		if err != nil {
			h.Confidence = Low
			return
		}
		v := M(amount, code)
		h.Value = &v
		fillValueLineAttrs(text, tok, code, h)
		return
	}
	h.Confidence = Low
}

// fillValueLineAttrs captures the weight and unit price that share the value
// line: the trailing percent is the portfolio weight, and a plain decimal
// distinct from the value token is read as the unit price.
func fillValueLineAttrs(text, valueTok, curCode string, h *Holding) {
	if ms := percentRegex.FindAllStringSubmatch(text, -1); len(ms) > 0 {
		if f, err := strconv.ParseFloat(ms[len(ms)-1][1], 64); err == nil {
			p := Percent(f)
			h.Weight = &p
		}
	}
	rest := strings.Replace(text, valueTok, "", 1)
	rest = percentRegex.ReplaceAllString(rest, "")
	if tok := plainDecimalRegex.FindString(rest); tok != "" {
		if amount, err := ParseAmount(tok); err == nil {
			price := M(amount, curCode)
			h.Price = &price
		}
	}
}

// containsCurrencyCode reports whether any word of the line is an ISO 4217
// currency code.
func containsCurrencyCode(text string) bool {
	return currencyCodeIn(text) != ""
}

// currencyCodeIn returns the first ISO 4217 code appearing as an isolated
// word in the line, or "".
func currencyCodeIn(text string) string {
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if IsCurrencyCode(f) {
			return f
		}
	}
	return ""
}

// findPercent returns the first percent token of the line as a Percent.
func findPercent(text string) (Percent, bool) {
	m := percentRegex.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return Percent(f), true
}

// isNumericNoise reports whether the line is composed entirely of digits,
// punctuation, percent signs and whitespace: a figures-only line cannot be a
// name.
func isNumericNoise(text string) bool {
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' || r == ',' || r == '\'' || r == '%' || r == '-' || r == '+':
		case r == ' ' || r == '\t' || r == '(' || r == ')' || r == '/' || r == ':':
		default:
			return false
		}
	}
	return true
}
