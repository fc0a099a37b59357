package holdex

// Config holds the heuristic tunables of one extraction run. It is passed at
// construction so concurrent runs with different tuning cannot interfere.
// Zero fields fall back to the defaults below; zero is "unset", so the
// numeric tunables cannot be configured to 0. An empty-but-non-nil keyword
// slice does disable its rule.
type Config struct {
	// NameWindow is how many lines before an anchor are searched for the
	// descriptive name.
	NameWindow int
	// ValueWindow is how many lines after an anchor are searched for the
	// market value.
	ValueWindow int

	// TotalKeywords flag a nearby numeric token as an aggregate figure.
	TotalKeywords []string
	// KeywordDistance bounds, in lines, how far from a total keyword a
	// numeric token is still considered part of the aggregate row. The
	// effective minimum is 1 (0 means the default).
	KeywordDistance int

	// SectionStartKeywords open a summary section; the section runs until a
	// SectionEndKeywords match or a run of BlankRun blank lines. BlankRun's
	// effective minimum is 1 (0 means the default).
	SectionStartKeywords []string
	SectionEndKeywords   []string
	BlankRun             int

	// AuxMarkers disqualify a line from being a name: they label secondary
	// identifiers (Swiss statements print "Valorn." under each position).
	AuxMarkers []string

	// SubtotalTolerance is the relative tolerance of the
	// value-equals-sum-of-holdings subtotal heuristic.
	SubtotalTolerance float64

	// SkipCheckDigit accepts identifier-shaped codes without validating the
	// ISIN check digit. Off by default: validation cuts false anchors from
	// reference numbers that happen to match the shape.
	SkipCheckDigit bool
}

// DefaultConfig returns the tuning that works on the custodian statements the
// engine was calibrated against.
func DefaultConfig() Config {
	return Config{
		NameWindow:           10,
		ValueWindow:          10,
		TotalKeywords:        []string{"total", "subtotal", "portfolio value", "grand total"},
		KeywordDistance:      2,
		SectionStartKeywords: []string{"asset allocation", "allocation by", "summary of"},
		SectionEndKeywords:   []string{"end of"},
		BlankRun:             2,
		AuxMarkers:           []string{"valorn", "valor no", "security no"},
		SubtotalTolerance:    0.005,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.NameWindow == 0 {
		c.NameWindow = d.NameWindow
	}
	if c.ValueWindow == 0 {
		c.ValueWindow = d.ValueWindow
	}
	if c.TotalKeywords == nil {
		c.TotalKeywords = d.TotalKeywords
	}
	if c.KeywordDistance == 0 {
		c.KeywordDistance = d.KeywordDistance
	}
	if c.SectionStartKeywords == nil {
		c.SectionStartKeywords = d.SectionStartKeywords
	}
	if c.SectionEndKeywords == nil {
		c.SectionEndKeywords = d.SectionEndKeywords
	}
	if c.BlankRun == 0 {
		c.BlankRun = d.BlankRun
	}
	if c.AuxMarkers == nil {
		c.AuxMarkers = d.AuxMarkers
	}
	if c.SubtotalTolerance == 0 {
		c.SubtotalTolerance = d.SubtotalTolerance
	}
	return c
}

// Extractor runs the holding-reconstruction pipeline. It is stateless across
// runs: the same Extractor may serve concurrent extractions.
type Extractor struct {
	cfg Config
}

// New creates an Extractor with the given tuning.
func New(cfg Config) *Extractor {
	return &Extractor{cfg: cfg.withDefaults()}
}

// Extract runs the pipeline over the document text and returns a best-effort
// result. Data-quality problems never fail the run; they surface as lowered
// confidences and a reduced accuracy.
func (e *Extractor) Extract(text string) *ExtractionResult {
	return e.run(text, nil, nil)
}

// ExtractAgainst is Extract with a known target total to score against.
func (e *Extractor) ExtractAgainst(text string, target Money) *ExtractionResult {
	return e.run(text, nil, &target)
}

// ExtractBlend runs the pipeline and reconciles the extra pre-resolved
// candidates (typically from an external vision extractor) under the same
// duplicate-merge rule as the engine's own holdings. Candidate line indices
// refer to whatever document the external extractor saw, not this one, so
// the summary exclusions and the subtotal rule never apply to candidates.
// target may be nil.
func (e *Extractor) ExtractBlend(text string, candidates []Holding, target *Money) *ExtractionResult {
	return e.run(text, candidates, target)
}

func (e *Extractor) run(text string, candidates []Holding, target *Money) *ExtractionResult {
	lines := SplitLines(text)

	cls := summaryClassifier{cfg: e.cfg}
	excluded := cls.excluded(lines)

	anchors := FindAnchors(lines, !e.cfg.SkipCheckDigit)

	var holdings []Holding
	for _, a := range anchors {
		// Anchors inside a summary section never become holdings.
		if excluded[a.Line] {
			continue
		}
		holdings = append(holdings, resolveHolding(lines, a, e.cfg, excluded))
	}

	return reconcile(holdings, candidates, excluded, target, e.cfg.SubtotalTolerance)
}
