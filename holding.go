package holdex

// Confidence is a coarse quality tag reflecting how many of a holding's
// fields were resolved unambiguously.
type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	Low    Confidence = "low"
)

// rank orders confidences for the duplicate-merge rule.
func (c Confidence) rank() int {
	switch c {
	case High:
		return 2
	case Medium:
		return 1
	default:
		return 0
	}
}

// Downgrade returns the next lower confidence. Low stays Low.
func (c Confidence) Downgrade() Confidence {
	switch c {
	case High:
		return Medium
	default:
		return Low
	}
}

// Holding is one reconstructed security position. Optional fields stay at
// their zero value (or nil) when the windows around the anchor did not yield
// them; the Confidence tag records how complete the resolution was.
type Holding struct {
	Code     string
	Name     string
	Currency string
	Value    *Money

	// Secondary attributes, captured opportunistically from the same windows.
	Maturity string
	Coupon   *Percent
	Price    *Money
	Weight   *Percent

	Confidence Confidence

	// SourceLine is the anchor's line; ValueLine is where the value was read,
	// -1 when no value resolved.
	SourceLine int
	ValueLine  int
}

// MarshalJSON writes the holding as a flat object with a stable field order,
// omitting unresolved optional fields.
func (h Holding) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("code", h.Code)
	w.Optional("name", h.Name)
	w.Optional("currency", h.Currency)
	if h.Value != nil {
		w.Append("value", h.Value.Amount())
	}
	w.Optional("maturity", h.Maturity)
	if h.Coupon != nil {
		w.Append("coupon", float64(*h.Coupon))
	}
	if h.Price != nil {
		w.Append("price", h.Price.Amount())
	}
	if h.Weight != nil {
		w.Append("weight", float64(*h.Weight))
	}
	w.Append("confidence", string(h.Confidence))
	w.Append("sourceLine", h.SourceLine)
	return w.MarshalJSON()
}
