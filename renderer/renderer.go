// Package renderer turns extraction results into markdown reports.
package renderer

import (
	"fmt"
	"strings"

	"github.com/aviadkim/holdex"
)

// ResultMarkdown renders the full extraction report: the holdings table
// followed by the reconciliation summary.
func ResultMarkdown(r *holdex.ExtractionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Extracted Holdings\n\n")
	b.WriteString(HoldingsMarkdown(r.Holdings))
	b.WriteString("\n")
	b.WriteString(SummaryMarkdown(r))
	return b.String()
}

// HoldingsMarkdown renders one table row per holding. Unresolved optional
// fields render as empty cells.
func HoldingsMarkdown(holdings []holdex.Holding) string {
	var b strings.Builder
	fmt.Fprintln(&b, "| Code | Name | Currency | Value | Maturity | Coupon | Weight | Confidence |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|:---|---:|---:|:---|")
	for _, h := range holdings {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			h.Code,
			h.Name,
			h.Currency,
			moneyCell(h.Value),
			h.Maturity,
			percentCell(h.Coupon),
			percentCell(h.Weight),
			h.Confidence,
		)
	}
	return b.String()
}

// SummaryMarkdown renders the aggregate outcome of the run.
func SummaryMarkdown(r *holdex.ExtractionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Reconciliation\n\n")
	fmt.Fprintf(&b, "- Holdings: %d (%d without value)\n", len(r.Holdings), r.Unresolved)
	fmt.Fprintf(&b, "- Total value: %s\n", r.TotalValue)
	if r.TargetValue != nil {
		fmt.Fprintf(&b, "- Target value: %s\n", *r.TargetValue)
	}
	if r.Accuracy != nil {
		fmt.Fprintf(&b, "- Accuracy: %s\n", *r.Accuracy)
	} else {
		fmt.Fprintf(&b, "- Accuracy: n/a (no target supplied)\n")
	}
	if len(r.ExcludedLines) > 0 {
		fmt.Fprintf(&b, "- Summary lines excluded: %d\n", len(r.ExcludedLines))
	}
	return b.String()
}

func moneyCell(m *holdex.Money) string {
	if m == nil {
		return ""
	}
	return m.String()
}

func percentCell(p *holdex.Percent) string {
	if p == nil {
		return ""
	}
	return p.String()
}
