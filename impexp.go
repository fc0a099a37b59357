package holdex

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// this file contains functions to handle the import/export format.
// It should remain human readable, one holding per line, and easy to feed
// back into a blend run.

// ExportHoldings writes holdings to 'w' in the import/export format: a JSONL
// stream, one JSON object per holding, in the stable field order of
// Holding.MarshalJSON.
func ExportHoldings(w io.Writer, holdings []Holding) error {
	for _, h := range holdings {
		data, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("cannot marshal holding %q: %w", h.Code, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return err
		}
	}
	return nil
}

// ImportHoldings reads holdings from 'r' in the import/export format. This is
// how pre-resolved candidates from an external extractor enter a blend run:
// each line is one holding, unknown fields are ignored, and every code must
// satisfy the full identifier grammar, check digit included. The import
// contract is deliberately stricter than the scanner: Config.SkipCheckDigit
// loosens in-document detection only, never what this format accepts.
func ImportHoldings(r io.Reader) ([]Holding, error) {
	// the readable version of the format can be summarized by one type.
	type jholding struct {
		Code       string           `json:"code"`
		Name       string           `json:"name"`
		Currency   string           `json:"currency"`
		Value      *decimal.Decimal `json:"value"`
		Maturity   string           `json:"maturity"`
		Coupon     *float64         `json:"coupon"`
		Price      *decimal.Decimal `json:"price"`
		Weight     *float64         `json:"weight"`
		Confidence string           `json:"confidence"`
		SourceLine int              `json:"sourceLine"`
	}

	var holdings []Holding
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var jh jholding
		if err := json.Unmarshal(line, &jh); err != nil {
			return nil, fmt.Errorf("cannot parse line for holding import format: %q: %w", string(line), err)
		}
		if err := ValidateISIN(jh.Code); err != nil {
			return nil, fmt.Errorf("invalid code %q in holding import: %w", jh.Code, err)
		}

		h := Holding{
			Code:       jh.Code,
			Name:       jh.Name,
			Currency:   jh.Currency,
			Maturity:   jh.Maturity,
			Confidence: Confidence(jh.Confidence),
			SourceLine: jh.SourceLine,
			ValueLine:  -1,
		}
		if h.Confidence == "" {
			h.Confidence = Medium
		}
		if jh.Value != nil {
			v := M(*jh.Value, jh.Currency)
			h.Value = &v
		}
		if jh.Coupon != nil {
			p := Percent(*jh.Coupon)
			h.Coupon = &p
		}
		if jh.Price != nil {
			p := M(*jh.Price, jh.Currency)
			h.Price = &p
		}
		if jh.Weight != nil {
			p := Percent(*jh.Weight)
			h.Weight = &p
		}
		holdings = append(holdings, h)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read holding import stream: %w", err)
	}
	return holdings, nil
}

// csvHeader is the column order of the tabular export.
var csvHeader = []string{"code", "name", "currency", "value", "maturity", "coupon", "price", "weight", "confidence"}

// ExportCSV writes the result as a tabular export, one row per retained
// holding. Unresolved optional fields export as empty cells.
func ExportCSV(w io.Writer, r *ExtractionResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, h := range r.Holdings {
		row := []string{
			h.Code,
			h.Name,
			h.Currency,
			amountCell(h.Value),
			h.Maturity,
			percentCell(h.Coupon),
			amountCell(h.Price),
			percentCell(h.Weight),
			string(h.Confidence),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func amountCell(m *Money) string {
	if m == nil {
		return ""
	}
	return m.Amount().String()
}

func percentCell(p *Percent) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.4g", float64(*p))
}
