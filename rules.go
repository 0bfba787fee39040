package ctnsum

import (
	"fmt"
	"unicode/utf8"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// TargetKind selects what a matching rule accumulates into.
type TargetKind string

const (
	// KindDestination adds the row to a destination bucket keyed by warehouse code.
	KindDestination TargetKind = "destination"
	// KindDetail adds the row to a category detail keyed by (type, reference1, reference2).
	KindDetail TargetKind = "detail"
)

// Rule is one entry of the ordered classification table.
//
// When is an expr-lang boolean expression over the row variables:
//
//	note, warehouse, reference1, reference2  string (trimmed cell text)
//	warehouseLen                             int (rune count of warehouse)
//	ctn                                      int
//	hasRefs                                  bool (both references non-empty)
//	selfMarker, truckMarker                  string (configured note markers)
//
// The first rule whose condition holds decides the row. A detail rule drops
// rows that lack either reference instead of falling through.
type Rule struct {
	Name        string     `yaml:"name"`
	When        string     `yaml:"when"`
	Kind        TargetKind `yaml:"kind"`
	Destination string     `yaml:"destination,omitempty"` // fixed bucket; empty uses the row's warehouse code
	Type        string     `yaml:"type,omitempty"`        // detail category
}

// Detail categories.
const (
	TypeSelf = "Self"
	TypePD   = "PD"
)

// UPSDestination is the destination bucket for parcel-carrier rows. It always sorts last.
const UPSDestination = "UPS"

// DefaultRules returns the shipment sheet classification table.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "ups", When: `note contains "UPS"`, Kind: KindDestination, Destination: UPSDestination},
		{Name: "self-pickup", When: `note contains selfMarker`, Kind: KindDetail, Type: TypeSelf},
		{Name: "truck-delivery", When: `note contains truckMarker && warehouseLen > 4`, Kind: KindDetail, Type: TypePD},
		{Name: "warehouse", When: `warehouse != "" && warehouseLen <= 4`, Kind: KindDestination},
		{Name: "truck-fallback", When: `note contains truckMarker`, Kind: KindDetail, Type: TypePD},
	}
}

// LineItem is the per-row contract extracted from fixed column positions.
type LineItem struct {
	Row           int
	Reference1    string
	Reference2    string
	CTN           int
	WarehouseCode string
	Note          string
}

func (li LineItem) hasRefs() bool {
	return li.Reference1 != "" && li.Reference2 != ""
}

// ruleEnv builds the expression environment for one line item.
func ruleEnv(li LineItem, selfMarker, truckMarker string) map[string]any {
	return map[string]any{
		"note":         li.Note,
		"warehouse":    li.WarehouseCode,
		"warehouseLen": utf8.RuneCountInString(li.WarehouseCode),
		"reference1":   li.Reference1,
		"reference2":   li.Reference2,
		"ctn":          li.CTN,
		"hasRefs":      li.hasRefs(),
		"selfMarker":   selfMarker,
		"truckMarker":  truckMarker,
	}
}

type compiledRule struct {
	Rule
	program *vm.Program
}

// ruleSet is an ordered, compiled rule table. It is read-only after
// compileRules returns and safe for concurrent use.
type ruleSet struct {
	rules       []compiledRule
	selfMarker  string
	truckMarker string
}

func compileRules(rules []Rule, selfMarker, truckMarker string) (*ruleSet, error) {
	for _, issue := range ValidateRules(rules) {
		if issue.Severity == SeverityError {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRule, issue)
		}
	}

	env := ruleEnv(LineItem{}, selfMarker, truckMarker)
	set := &ruleSet{selfMarker: selfMarker, truckMarker: truckMarker}
	for i, r := range rules {
		program, err := expr.Compile(r.When, expr.Env(env), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d %q: %v", ErrInvalidRule, i, r.Name, err)
		}
		set.rules = append(set.rules, compiledRule{Rule: r, program: program})
	}
	return set, nil
}

// match returns the first rule whose condition holds for li, or nil.
func (s *ruleSet) match(li LineItem) (*compiledRule, error) {
	env := ruleEnv(li, s.selfMarker, s.truckMarker)
	for i := range s.rules {
		r := &s.rules[i]
		out, err := expr.Run(r.program, env)
		if err != nil {
			return nil, fmt.Errorf("evaluate rule %q on row %d: %w", r.Name, li.Row+1, err)
		}
		if ok, _ := out.(bool); ok {
			return r, nil
		}
	}
	return nil, nil
}
