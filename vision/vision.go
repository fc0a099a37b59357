// Package vision asks Gemini to read a statement text and propose holdings.
//
// It is the optional external extractor the reconciliation stage blends with:
// its output is a plain []holdex.Holding candidate list, subject to the same
// duplicate-merge rule as the engine's own findings. All the I/O, retry and
// cancellation concerns live here, never inside the core.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aviadkim/holdex"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

const prompt = `You are given the raw text of a financial statement.
List every individual security holding you can identify.
Skip subtotal and portfolio-total rows.
For each holding report: the 12-character ISIN, the security name, the ISO
currency code, the market value as a plain number, and when present the
maturity (dd.mm.yyyy), the coupon percent, and the portfolio weight percent.`

// responseSchema constrains Gemini to a JSON array of holding objects.
var responseSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"code":     {Type: genai.TypeString, Description: "12-character ISIN"},
			"name":     {Type: genai.TypeString},
			"currency": {Type: genai.TypeString, Description: "ISO 4217 code"},
			"value":    {Type: genai.TypeNumber},
			"maturity": {Type: genai.TypeString},
			"coupon":   {Type: genai.TypeNumber},
			"weight":   {Type: genai.TypeNumber},
		},
		Required: []string{"code"},
	},
}

// Extractor drives the Gemini call. The zero MaxAttempts and Model fall back
// to sensible defaults.
type Extractor struct {
	Model       string
	MaxAttempts int
}

// Extract sends the document text and returns the proposed holdings. The call
// is retried with exponential backoff up to MaxAttempts; ctx cancels both the
// in-flight request and the waits between attempts.
func (x Extractor) Extract(ctx context.Context, client *genai.Client, text string) ([]holdex.Holding, error) {
	model := x.Model
	if model == "" {
		model = defaultModel
	}
	attempts := x.MaxAttempts
	if attempts == 0 {
		attempts = 3
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	}
	contents := genai.Text(prompt + "\n\n" + text)

	var lastErr error
	delay := time.Second
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := client.Models.GenerateContent(ctx, model, contents, config)
		if err == nil {
			return parseHoldings(resp.Text())
		}
		lastErr = err
		log.Printf("vision extract attempt %d/%d failed: %v", attempt, attempts, err)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return nil, fmt.Errorf("vision extract failed after %d attempts: %w", attempts, lastErr)
}

// parseHoldings maps the model's JSON array to holdings. Entries whose code
// fails ISIN validation are dropped with a log line: the model sometimes
// hallucinates identifier-shaped strings, and a wrong code is worse than a
// missing holding. Validation here is unconditional, check digit included,
// regardless of how the engine's own scanner is tuned.
func parseHoldings(payload string) ([]holdex.Holding, error) {
	type jholding struct {
		Code     string   `json:"code"`
		Name     string   `json:"name"`
		Currency string   `json:"currency"`
		Value    *float64 `json:"value"`
		Maturity string   `json:"maturity"`
		Coupon   *float64 `json:"coupon"`
		Weight   *float64 `json:"weight"`
	}

	var raw []jholding
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("cannot parse vision response: %w", err)
	}

	var holdings []holdex.Holding
	for _, j := range raw {
		if err := holdex.ValidateISIN(j.Code); err != nil {
			log.Printf("vision: dropping candidate with invalid code %q: %v", j.Code, err)
			continue
		}
		h := holdex.Holding{
			Code:       j.Code,
			Name:       j.Name,
			Currency:   j.Currency,
			Maturity:   j.Maturity,
			Confidence: holdex.Medium,
			SourceLine: -1,
			ValueLine:  -1,
		}
		if j.Value != nil {
			v := holdex.M(*j.Value, j.Currency)
			h.Value = &v
		}
		if j.Coupon != nil {
			p := holdex.Percent(*j.Coupon)
			h.Coupon = &p
		}
		if j.Weight != nil {
			p := holdex.Percent(*j.Weight)
			h.Weight = &p
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}
