package ctnsum

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// orderedCounts is an additive counter that remembers key insertion order.
type orderedCounts[K comparable] struct {
	keys   []K
	counts map[K]int
}

func newOrderedCounts[K comparable]() *orderedCounts[K] {
	return &orderedCounts[K]{counts: make(map[K]int)}
}

func (o *orderedCounts[K]) add(key K, n int) {
	if _, ok := o.counts[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.counts[key] += n
}

func (o *orderedCounts[K]) each(fn func(key K, n int)) {
	for _, k := range o.keys {
		fn(k, o.counts[k])
	}
}

func (o *orderedCounts[K]) len() int {
	return len(o.keys)
}

type detailKey struct {
	Type       string
	Reference1 string
	Reference2 string
}

// AggregationState accumulates CTN per destination and per category detail.
// It only ever grows while rows are scanned.
type AggregationState struct {
	destinations *orderedCounts[string]
	details      *orderedCounts[detailKey]

	// Total is the CTN of every row that landed in a bucket.
	Total int
	// Rows is the number of rows that landed in a bucket.
	Rows int
	// Dropped is the number of rows that passed the skip policy but matched no bucket.
	Dropped int
}

func newAggregationState() *AggregationState {
	return &AggregationState{
		destinations: newOrderedCounts[string](),
		details:      newOrderedCounts[detailKey](),
	}
}

// Destination returns the accumulated CTN for a destination code.
func (s *AggregationState) Destination(code string) int {
	return s.destinations.counts[code]
}

// Detail returns the accumulated CTN for a category detail.
func (s *AggregationState) Detail(typ, ref1, ref2 string) int {
	return s.details.counts[detailKey{Type: typ, Reference1: ref1, Reference2: ref2}]
}

// Aggregate classifies the data rows of a normalized grid with the default rules.
func Aggregate(grid *Grid, dataStartRow int) (*AggregationState, error) {
	return NewProcessor().Aggregate(grid, dataStartRow)
}

// Aggregate classifies every data row from dataStartRow onward.
func (p *Processor) Aggregate(grid *Grid, dataStartRow int) (*AggregationState, error) {
	if p.ruleErr != nil {
		return nil, p.ruleErr
	}
	log := p.opts.logger
	state := newAggregationState()
	lower := cases.Lower(language.Und)

	blankRun := 0
	for r := max(dataStartRow, 0); r < len(grid.Rows); r++ {
		row := grid.Rows[r]
		if row.IsBlank() {
			blankRun++
			if blankRun >= p.opts.emptyRowLimit {
				log.Debug("Blank row limit reached, ending scan", zap.Int("row", r+1), zap.Int("blankRows", blankRun))
				break
			}
			continue
		}
		blankRun = 0

		item, ok := extractLineItem(r, row, lower)
		if !ok {
			continue
		}

		rule, err := p.rules.match(item)
		if err != nil {
			return nil, newStageError(StageClassify, "", err)
		}
		if !state.apply(rule, item) {
			state.Dropped++
			ruleName := ""
			if rule != nil {
				ruleName = rule.Name
			}
			log.Debug("Row dropped from aggregation",
				zap.Int("row", r+1),
				zap.String("rule", ruleName),
				zap.String("reference1", item.Reference1),
				zap.String("reference2", item.Reference2),
				zap.String("warehouse", item.WarehouseCode),
				zap.String("note", item.Note),
				zap.Int("ctn", item.CTN))
		}
	}
	return state, nil
}

// apply adds the item to the bucket chosen by rule and reports whether it landed anywhere.
func (s *AggregationState) apply(rule *compiledRule, item LineItem) bool {
	if rule == nil {
		return false
	}
	switch rule.Kind {
	case KindDestination:
		code := rule.Destination
		if code == "" {
			code = item.WarehouseCode
		}
		if code == "" {
			return false
		}
		s.destinations.add(code, item.CTN)
	case KindDetail:
		if !item.hasRefs() {
			return false
		}
		s.details.add(detailKey{Type: rule.Type, Reference1: item.Reference1, Reference2: item.Reference2}, item.CTN)
	default:
		return false
	}
	s.Total += item.CTN
	s.Rows++
	return true
}

// extractLineItem reads the fixed-position fields of a row. It returns false
// for rows the skip policy excludes: fewer than four cells, a subtotal or
// formula quantity, or a quantity that is not a positive integer.
// lower folds the quantity text before the subtotal check.
func extractLineItem(index int, row Row, lower cases.Caser) (LineItem, bool) {
	if row.Len() < colQuantity+1 {
		return LineItem{}, false
	}
	qty := row.Cell(colQuantity).Text()
	if strings.Contains(qty, "=") || strings.Contains(lower.String(qty), "total") {
		return LineItem{}, false
	}
	ctn, ok := parseQuantity(qty)
	if !ok || ctn <= 0 {
		return LineItem{}, false
	}
	return LineItem{
		Row:           index,
		Reference1:    row.Cell(colReference1).Text(),
		Reference2:    row.Cell(colReference2).Text(),
		CTN:           ctn,
		WarehouseCode: row.Cell(colWarehouse).Text(),
		Note:          row.Cell(colNote).Text(),
	}, true
}

// parseQuantity reads the leading integer of s, ignoring anything after it,
// so "12", "12.0" and "12 ctns" all yield 12.
func parseQuantity(s string) (int, bool) {
	s = strings.TrimSpace(s)
	i, neg := 0, false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	n := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		if n > 1<<31 {
			return 0, false
		}
		i++
	}
	if i == start {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
