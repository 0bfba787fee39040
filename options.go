package ctnsum

import (
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultSelfPickupMarker marks a line item the consignee collects in person.
	DefaultSelfPickupMarker = "自提"
	// DefaultTruckMarker marks a line item delivered by truck to a private address.
	DefaultTruckMarker = "卡车派送"
	// DefaultEmptyRowLimit is the number of consecutive blank rows that ends the data region.
	DefaultEmptyRowLimit = 10
	// DefaultDateLayout renders the generation date the way a US-locale spreadsheet shows it.
	DefaultDateLayout = "1/2/2006"
	// DefaultSheetName is the name of the single sheet in a rendered summary.
	DefaultSheetName = "Summary"
)

// DefaultHeaderTokens are the lowercase substrings that identify the quantity column header.
var DefaultHeaderTokens = []string{"ctn", "箱数"}

// Options holds configuration for the Processor.
type Options struct {
	logger           *zap.Logger
	rules            []Rule
	selfPickupMarker string
	truckMarker      string
	headerTokens     []string
	emptyRowLimit    int
	sheet            string
	sheetName        string
	dateLayout       string
	clock            func() time.Time
}

func defaultOptions() *Options {
	return &Options{
		logger:           zap.NewNop(),
		rules:            DefaultRules(),
		selfPickupMarker: DefaultSelfPickupMarker,
		truckMarker:      DefaultTruckMarker,
		headerTokens:     DefaultHeaderTokens,
		emptyRowLimit:    DefaultEmptyRowLimit,
		sheetName:        DefaultSheetName,
		dateLayout:       DefaultDateLayout,
		clock:            time.Now,
	}
}

// Option configures the Processor.
type Option func(*Options)

// WithLogger sets the logger used for stage and row diagnostics (default: no-op).
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRules replaces the ordered classification rule table.
func WithRules(rules []Rule) Option {
	return func(o *Options) { o.rules = rules }
}

// WithSelfPickupMarker sets the note substring that marks self-pickup rows (default: "自提").
// An empty marker is ignored, since it would match every note.
func WithSelfPickupMarker(marker string) Option {
	return func(o *Options) {
		if marker != "" {
			o.selfPickupMarker = marker
		}
	}
}

// WithTruckMarker sets the note substring that marks truck-delivery rows (default: "卡车派送").
// An empty marker is ignored.
func WithTruckMarker(marker string) Option {
	return func(o *Options) {
		if marker != "" {
			o.truckMarker = marker
		}
	}
}

// WithHeaderTokens sets the substrings that identify the quantity header row.
// Tokens are compared against lowercased cell text.
func WithHeaderTokens(tokens ...string) Option {
	return func(o *Options) { o.headerTokens = tokens }
}

// WithEmptyRowLimit sets how many consecutive blank rows end the scan (default: 10).
func WithEmptyRowLimit(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.emptyRowLimit = n
		}
	}
}

// WithSheet selects the input sheet by name. The first sheet is used when unset.
func WithSheet(name string) Option {
	return func(o *Options) { o.sheet = name }
}

// WithSheetName sets the name of the rendered summary sheet (default: "Summary").
func WithSheetName(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.sheetName = name
		}
	}
}

// WithDateLayout sets the time layout of the generation date in row 1 (default: "1/2/2006").
func WithDateLayout(layout string) Option {
	return func(o *Options) {
		if layout != "" {
			o.dateLayout = layout
		}
	}
}

// WithClock overrides the source of the generation date.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		if clock != nil {
			o.clock = clock
		}
	}
}
