package holdex

import (
	"encoding/json"
	"strings"
	"testing"
)

func USD(v float64) Money { return M(v, "USD") }
func CHF(v float64) Money { return M(v, "CHF") }

// statement is the canonical two-position fixture: two bond blocks followed
// by a portfolio total that must not become a third holding.
const statement = `TORONTO DOMINION BANK NOTES
ISIN: XS2530201644
Currency: USD
Value: 199'080.00
CANADIAN IMPERIAL BANK NOTES
ISIN: XS2588105036
Currency: USD
Value: 200'288.00
TOTAL PORTFOLIO VALUE: 399'368.00 USD`

// TestConfig_zeroFieldsTakeDefaults pins the documented contract: zero means
// "unset", so the numeric tunables are floored at their defaults, while an
// empty-but-non-nil keyword slice disables its rule.
func TestConfig_zeroFieldsTakeDefaults(t *testing.T) {
	got := Config{TotalKeywords: []string{}}.withDefaults()
	want := DefaultConfig()
	if got.KeywordDistance != want.KeywordDistance {
		t.Errorf("KeywordDistance = %d, want default %d", got.KeywordDistance, want.KeywordDistance)
	}
	if got.BlankRun != want.BlankRun {
		t.Errorf("BlankRun = %d, want default %d", got.BlankRun, want.BlankRun)
	}
	if got.NameWindow != want.NameWindow || got.ValueWindow != want.ValueWindow {
		t.Errorf("windows = %d/%d, want defaults %d/%d",
			got.NameWindow, got.ValueWindow, want.NameWindow, want.ValueWindow)
	}
	if len(got.TotalKeywords) != 0 {
		t.Errorf("TotalKeywords = %v, want the explicit empty set kept", got.TotalKeywords)
	}
}

func TestExtract_twoHoldingsAndTotal(t *testing.T) {
	res := New(DefaultConfig()).Extract(statement)

	if len(res.Holdings) != 2 {
		t.Fatalf("len(Holdings) = %d, want 2: %+v", len(res.Holdings), res.Holdings)
	}

	want := []struct {
		code  string
		name  string
		value Money
	}{
		{"XS2530201644", "TORONTO DOMINION BANK NOTES", USD(199080.00)},
		{"XS2588105036", "CANADIAN IMPERIAL BANK NOTES", USD(200288.00)},
	}
	for i, w := range want {
		h := res.Holdings[i]
		if h.Code != w.code {
			t.Errorf("Holdings[%d].Code = %q, want %q", i, h.Code, w.code)
		}
		if h.Name != w.name {
			t.Errorf("Holdings[%d].Name = %q, want %q", i, h.Name, w.name)
		}
		if h.Value == nil || !h.Value.Equal(w.value) {
			t.Errorf("Holdings[%d].Value = %v, want %v", i, h.Value, w.value)
		}
		if h.Confidence != High {
			t.Errorf("Holdings[%d].Confidence = %v, want %v", i, h.Confidence, High)
		}
	}

	if !res.TotalValue.Equal(USD(399368.00)) {
		t.Errorf("TotalValue = %v, want %v", res.TotalValue, USD(399368.00))
	}
	if res.Accuracy != nil {
		t.Errorf("Accuracy = %v, want unavailable without a target", *res.Accuracy)
	}
}

func TestExtractAgainst_perfectTarget(t *testing.T) {
	res := New(DefaultConfig()).ExtractAgainst(statement, USD(399368))
	if res.Accuracy == nil {
		t.Fatal("Accuracy is unavailable, want 100.00")
	}
	if !res.Accuracy.Equal(Percent(100)) {
		t.Errorf("Accuracy = %v, want 100.00%%", *res.Accuracy)
	}
}

func TestExtractAgainst_discrepancyIsDataNotError(t *testing.T) {
	res := New(DefaultConfig()).ExtractAgainst(statement, USD(800000))
	if res.Accuracy == nil {
		t.Fatal("Accuracy is unavailable")
	}
	if *res.Accuracy <= 0 || *res.Accuracy >= 100 {
		t.Errorf("Accuracy = %v, want a partial score", *res.Accuracy)
	}
}

// TestExtract_totalSumInvariant checks that the sum of retained values equals
// TotalValue exactly, with no rounding anywhere.
func TestExtract_totalSumInvariant(t *testing.T) {
	res := New(DefaultConfig()).Extract(statement)
	sum := M(0, "")
	for _, h := range res.Holdings {
		if h.Value != nil {
			sum = sum.Add(*h.Value)
		}
	}
	if !sum.Amount().Equal(res.TotalValue.Amount()) {
		t.Errorf("sum of values = %v, TotalValue = %v", sum, res.TotalValue)
	}
}

func TestExtract_deterministic(t *testing.T) {
	e := New(DefaultConfig())
	a, _ := json.Marshal(e.Extract(statement))
	b, _ := json.Marshal(e.Extract(statement))
	if string(a) != string(b) {
		t.Errorf("two runs differ:\n%s\n%s", a, b)
	}
}

func TestExtract_emptyInput(t *testing.T) {
	res := New(DefaultConfig()).Extract("")
	if len(res.Holdings) != 0 {
		t.Errorf("len(Holdings) = %d, want 0", len(res.Holdings))
	}
	if !res.TotalValue.IsZero() {
		t.Errorf("TotalValue = %v, want zero", res.TotalValue)
	}
	if res.Accuracy != nil {
		t.Errorf("Accuracy = %v, want unavailable", *res.Accuracy)
	}
}

func TestExtract_noIdentifiersWithTarget(t *testing.T) {
	res := New(DefaultConfig()).ExtractAgainst("just prose, no codes at all", USD(1000))
	if len(res.Holdings) != 0 {
		t.Fatalf("len(Holdings) = %d, want 0", len(res.Holdings))
	}
	if res.Accuracy == nil || !res.Accuracy.Equal(Percent(0)) {
		t.Errorf("Accuracy = %v, want 0.00%%", res.Accuracy)
	}
}

func TestExtract_anchorInsideSummarySectionIsDropped(t *testing.T) {
	text := `Asset Allocation
Bonds reference XS2530201644
USD 1'000'000.00

` + "\n" + statement
	res := New(DefaultConfig()).Extract(text)
	for _, h := range res.Holdings {
		if h.SourceLine <= 3 {
			t.Errorf("holding %q anchored at line %d inside the summary section", h.Code, h.SourceLine)
		}
	}
	if len(res.Holdings) != 2 {
		t.Errorf("len(Holdings) = %d, want only the 2 detail positions", len(res.Holdings))
	}
}

func TestExtract_noValueFromSummarySection(t *testing.T) {
	res := New(DefaultConfig()).Extract(statement)
	excluded := make(map[int]bool)
	for _, i := range res.ExcludedLines {
		excluded[i] = true
	}
	for _, h := range res.Holdings {
		if h.ValueLine >= 0 && excluded[h.ValueLine] {
			t.Errorf("holding %q drew its value from excluded line %d", h.Code, h.ValueLine)
		}
	}
}

func TestExtract_malformedGroupingGoesLowConfidence(t *testing.T) {
	text := `SOME ISSUER NOTES LONG NAME
ISIN: XS2530201644
Currency: USD
Value: 12'3'456`
	res := New(DefaultConfig()).Extract(text)
	if len(res.Holdings) != 1 {
		t.Fatalf("len(Holdings) = %d, want 1", len(res.Holdings))
	}
	h := res.Holdings[0]
	if h.Value != nil {
		t.Errorf("Value = %v, want nil for malformed grouping", h.Value)
	}
	if h.Confidence != Low {
		t.Errorf("Confidence = %v, want %v", h.Confidence, Low)
	}
	if res.Unresolved != 1 {
		t.Errorf("Unresolved = %d, want 1", res.Unresolved)
	}
}

func TestExtract_missingNameDowngrades(t *testing.T) {
	// nothing plausible above the anchor
	text := `ISIN: XS2530201644
Currency: USD
Value: 199'080.00`
	res := New(DefaultConfig()).Extract(text)
	if len(res.Holdings) != 1 {
		t.Fatalf("len(Holdings) = %d, want 1", len(res.Holdings))
	}
	h := res.Holdings[0]
	if h.Name != "" {
		t.Errorf("Name = %q, want unresolved", h.Name)
	}
	if h.Confidence != Medium {
		t.Errorf("Confidence = %v, want %v", h.Confidence, Medium)
	}
}

func TestExtract_duplicateCodeMergesByConfidence(t *testing.T) {
	// The first occurrence has no name in reach (Medium at best), the second
	// is complete (High): the merge must keep the complete one.
	text := `ISIN: XS2530201644

TORONTO DOMINION BANK NOTES
ISIN: XS2530201644
Currency: USD
Value: 199'080.00`
	res := New(DefaultConfig()).Extract(text)
	if len(res.Holdings) != 1 {
		t.Fatalf("len(Holdings) = %d, want 1 after merge", len(res.Holdings))
	}
	h := res.Holdings[0]
	if h.Confidence != High {
		t.Errorf("Confidence = %v, want the higher of the duplicates", h.Confidence)
	}
	if h.Value == nil || !h.Value.Equal(USD(199080)) {
		t.Errorf("Value = %v, want %v", h.Value, USD(199080))
	}
}

func TestExtractBlend_externalCandidates(t *testing.T) {
	cand := USD(123456.00)
	candidates := []Holding{{
		Code:       "CH0012032048",
		Name:       "ROCHE HOLDING AG",
		Currency:   "USD",
		Value:      &cand,
		Confidence: Medium,
		SourceLine: 0,
		ValueLine:  -1,
	}}
	res := New(DefaultConfig()).ExtractBlend(statement, candidates, nil)
	if len(res.Holdings) != 3 {
		t.Fatalf("len(Holdings) = %d, want 3", len(res.Holdings))
	}
	if !res.TotalValue.Equal(USD(399368.00 + 123456.00)) {
		t.Errorf("TotalValue = %v, want blend total", res.TotalValue)
	}
}

func TestExtractBlend_candidateDuplicateLosesToHigherConfidence(t *testing.T) {
	wrong := USD(1.00)
	candidates := []Holding{{
		Code:       "XS2530201644",
		Currency:   "USD",
		Value:      &wrong,
		Confidence: Low,
		ValueLine:  -1,
	}}
	res := New(DefaultConfig()).ExtractBlend(statement, candidates, nil)
	if len(res.Holdings) != 2 {
		t.Fatalf("len(Holdings) = %d, want 2 after merge", len(res.Holdings))
	}
	for _, h := range res.Holdings {
		if h.Code == "XS2530201644" && (h.Value == nil || !h.Value.Equal(USD(199080))) {
			t.Errorf("merge kept the low-confidence candidate: %+v", h)
		}
	}
}

// TestExtractBlend_candidateKeptDespiteDocumentExclusions pins down that a
// candidate's line indices are not interpreted in the scanned document's
// coordinate space: a candidate anchored at line 0 must survive a document
// whose own line 0 sits inside a summary section.
func TestExtractBlend_candidateKeptDespiteDocumentExclusions(t *testing.T) {
	text := `Asset Allocation
Bonds 60%


` + statement
	cand := USD(123456.00)
	candidates := []Holding{{
		Code:       "CH0012032048",
		Name:       "ROCHE HOLDING AG",
		Currency:   "USD",
		Value:      &cand,
		Confidence: Medium,
		SourceLine: 0,
		ValueLine:  -1,
	}}
	res := New(DefaultConfig()).ExtractBlend(text, candidates, nil)

	found := false
	for _, i := range res.ExcludedLines {
		if i == 0 {
			found = true
		}
	}
	if !found {
		t.Fatal("fixture broken: document line 0 is not excluded")
	}

	var kept *Holding
	for i := range res.Holdings {
		if res.Holdings[i].Code == "CH0012032048" {
			kept = &res.Holdings[i]
		}
	}
	if kept == nil {
		t.Fatalf("external candidate dropped: holdings = %+v, excluded = %v",
			res.Holdings, res.ExcludedLines)
	}
	if kept.Value == nil || !kept.Value.Equal(cand) {
		t.Errorf("candidate value = %v, want %v", kept.Value, cand)
	}
}

// TestExtractBlend_candidateIsNeverASubtotal pins down that the run-sum
// subtotal rule only judges the engine's own findings: a candidate whose
// value coincides with the sum of two extracted holdings stays.
func TestExtractBlend_candidateIsNeverASubtotal(t *testing.T) {
	cand := USD(399368.00) // exactly the sum of the two statement positions
	candidates := []Holding{{
		Code:       "CH0012032048",
		Currency:   "USD",
		Value:      &cand,
		Confidence: Medium,
		SourceLine: -1,
		ValueLine:  -1,
	}}
	res := New(DefaultConfig()).ExtractBlend(statement, candidates, nil)
	if len(res.Holdings) != 3 {
		t.Fatalf("len(Holdings) = %d, want 3 with the candidate kept", len(res.Holdings))
	}
	if !res.TotalValue.Equal(USD(2 * 399368.00)) {
		t.Errorf("TotalValue = %v, want the candidate counted", res.TotalValue)
	}
}

func TestExtract_secondaryAttributes(t *testing.T) {
	text := `BANK OF AMERICA NOTES 3.25% 20.03.2027
ISIN: XS2110079584
Currency: USD
Nominal 200'000 Price 99.37 Value 198'745.00 1.02%`
	res := New(DefaultConfig()).Extract(text)
	if len(res.Holdings) != 1 {
		t.Fatalf("len(Holdings) = %d, want 1", len(res.Holdings))
	}
	h := res.Holdings[0]
	if h.Maturity != "20.03.2027" {
		t.Errorf("Maturity = %q, want 20.03.2027", h.Maturity)
	}
	if h.Coupon == nil || !h.Coupon.Equal(Percent(3.25)) {
		t.Errorf("Coupon = %v, want 3.25%%", h.Coupon)
	}
	if h.Weight == nil || !h.Weight.Equal(Percent(1.02)) {
		t.Errorf("Weight = %v, want 1.02%%", h.Weight)
	}
	if h.Price == nil || !h.Price.Amount().Equal(M(99.37, "USD").Amount()) {
		t.Errorf("Price = %v, want 99.37", h.Price)
	}
}

func TestExportImportHoldings_roundTrip(t *testing.T) {
	res := New(DefaultConfig()).Extract(statement)

	var buf strings.Builder
	if err := ExportHoldings(&buf, res.Holdings); err != nil {
		t.Fatalf("ExportHoldings() error = %v", err)
	}
	back, err := ImportHoldings(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ImportHoldings() error = %v", err)
	}
	if len(back) != len(res.Holdings) {
		t.Fatalf("round trip lost holdings: %d != %d", len(back), len(res.Holdings))
	}
	for i := range back {
		if back[i].Code != res.Holdings[i].Code {
			t.Errorf("Code = %q, want %q", back[i].Code, res.Holdings[i].Code)
		}
		if back[i].Value == nil || !back[i].Value.Amount().Equal(res.Holdings[i].Value.Amount()) {
			t.Errorf("Value = %v, want %v", back[i].Value, res.Holdings[i].Value)
		}
	}
}

func TestImportHoldings_rejectsBadCode(t *testing.T) {
	_, err := ImportHoldings(strings.NewReader(`{"code":"XS2754416961","value":1}` + "\n"))
	if err == nil {
		t.Error("ImportHoldings accepted a code with a wrong check digit")
	}
}

func TestExportCSV(t *testing.T) {
	res := New(DefaultConfig()).Extract(statement)
	var buf strings.Builder
	if err := ExportCSV(&buf, res); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv has %d lines, want header + 2 rows:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "XS2530201644,TORONTO DOMINION BANK NOTES,USD,199080") {
		t.Errorf("unexpected first row: %s", lines[1])
	}
}
