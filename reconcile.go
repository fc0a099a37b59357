package holdex

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ExtractionResult is the aggregate outcome of one run. It is immutable once
// returned: the reconciler owns its construction end to end.
type ExtractionResult struct {
	// Holdings are the retained positions, in document order.
	Holdings []Holding

	// TotalValue is the exact sum of the retained values; its currency is the
	// one most holdings were valued in.
	TotalValue Money

	// TargetValue is the externally supplied expected total, when any.
	TargetValue *Money

	// Accuracy is the score against TargetValue, clamped to [0,100]. Nil when
	// no target was supplied: unavailable, not zero.
	Accuracy *Percent

	// Unresolved counts retained holdings whose value stayed nil. They
	// contribute zero to TotalValue but matter for diagnostics.
	Unresolved int

	// ExcludedLines are the line indices the summary classifier ruled out,
	// sorted ascending.
	ExcludedLines []int
}

// reconcile drops excluded and subtotal-shaped holdings, merges duplicates by
// confidence, sums the survivors exactly and scores against the target. It
// never fails: discrepancies are data, not errors.
//
// candidates are externally pre-resolved holdings. Their line indices belong
// to a different coordinate space than the document's, so they skip the
// exclusion and subtotal stages and enter at the duplicate merge only.
func reconcile(holdings, candidates []Holding, excluded map[int]bool, target *Money, tolerance float64) *ExtractionResult {
	res := &ExtractionResult{
		TargetValue:   target,
		ExcludedLines: sortedKeys(excluded),
	}

	// Drop holdings anchored on, or valued from, an excluded line.
	var kept []Holding
	for _, h := range holdings {
		if excluded[h.SourceLine] || (h.ValueLine >= 0 && excluded[h.ValueLine]) {
			continue
		}
		kept = append(kept, h)
	}

	// Subtotal heuristic: a value equal to the sum of a contiguous run of two
	// or more already-accepted values is a probable section subtotal; drop it
	// and keep its constituents. A coincidentally-matching real holding is a
	// known limitation of this rule.
	var accepted []Holding
	var acceptedValues []decimal.Decimal
	for _, h := range kept {
		if h.Value != nil && matchesRunSum(h.Value.Amount(), acceptedValues, tolerance) {
			continue
		}
		accepted = append(accepted, h)
		if h.Value != nil {
			acceptedValues = append(acceptedValues, h.Value.Amount())
		}
	}

	// Duplicate merge: same code keeps the higher confidence; ties keep the
	// first encountered, at its original position. Candidates join here.
	byCode := make(map[string]int)
	var merged []Holding
	for _, h := range append(accepted, candidates...) {
		at, dup := byCode[h.Code]
		if !dup {
			byCode[h.Code] = len(merged)
			merged = append(merged, h)
			continue
		}
		if h.Confidence.rank() > merged[at].Confidence.rank() {
			merged[at] = h
		}
	}
	res.Holdings = merged

	// Exact total; nulls count as unresolved, not as zero-value data.
	total := decimal.Zero
	counts := make(map[string]int)
	for _, h := range merged {
		if h.Value == nil {
			res.Unresolved++
			continue
		}
		total = total.Add(h.Value.Amount())
		counts[h.Value.Currency()]++
	}
	res.TotalValue = M(total, dominant(counts))

	if target != nil {
		res.Accuracy = score(total, target.Amount())
	}
	return res
}

// score computes max(0, (1 - |total-target|/target) * 100) clamped to
// [0, 100].
func score(total, target decimal.Decimal) *Percent {
	if target.IsZero() {
		p := Percent(0)
		if total.IsZero() {
			p = Percent(100)
		}
		return &p
	}
	ratio, _ := total.Sub(target).Abs().Div(target.Abs()).Float64()
	p := Percent((1 - ratio) * 100)
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return &p
}

// matchesRunSum reports whether v equals, within the relative tolerance, the
// sum of a contiguous run of at least two of the values, in order.
func matchesRunSum(v decimal.Decimal, values []decimal.Decimal, tolerance float64) bool {
	tol := decimal.NewFromFloat(tolerance)
	for from := 0; from < len(values); from++ {
		sum := values[from]
		for to := from + 1; to < len(values); to++ {
			sum = sum.Add(values[to])
			if withinTolerance(v, sum, tol) {
				return true
			}
		}
	}
	return false
}

func withinTolerance(a, b, tol decimal.Decimal) bool {
	if b.IsZero() {
		return a.IsZero()
	}
	return a.Sub(b).Abs().LessThanOrEqual(b.Abs().Mul(tol))
}

// dominant returns the most frequent currency, ties broken alphabetically for
// determinism.
func dominant(counts map[string]int) string {
	best, bestN := "", 0
	for c, n := range counts {
		if n > bestN || (n == bestN && best != "" && c < best) {
			best, bestN = c, n
		}
	}
	return best
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// MarshalJSON writes the result with a stable field order: holdings first,
// then the aggregate summary.
func (r *ExtractionResult) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	holdings := r.Holdings
	if holdings == nil {
		holdings = []Holding{}
	}
	w.Append("holdings", holdings)
	w.Append("totalValue", r.TotalValue.Amount())
	w.Optional("currency", r.TotalValue.Currency())
	if r.TargetValue != nil {
		w.Append("targetValue", r.TargetValue.Amount())
	}
	if r.Accuracy != nil {
		w.Append("accuracyPercent", float64(*r.Accuracy))
	}
	w.Append("unresolved", r.Unresolved)
	excluded := r.ExcludedLines
	if excluded == nil {
		excluded = []int{}
	}
	w.Append("excludedLines", excluded)
	return w.MarshalJSON()
}
