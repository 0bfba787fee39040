package ctnsum

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // Rule table will be rejected
	SeverityWarning                 // Rule table may classify unexpectedly
)

// ValidationIssue represents a single problem found in a rule table.
type ValidationIssue struct {
	Severity Severity
	Index    int
	Rule     string
	Message  string
}

// String formats the issue as "[ERROR] rule 2 (ups): message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] rule %d (%s): %s", sev, v.Index, v.Rule, v.Message)
}

// ValidateRules checks a rule table for structural and expression errors
// without classifying any data.
func ValidateRules(rules []Rule) []ValidationIssue {
	var issues []ValidationIssue
	if len(rules) == 0 {
		return append(issues, ValidationIssue{
			Severity: SeverityWarning,
			Index:    -1,
			Message:  "rule table is empty, every row will be dropped",
		})
	}

	seen := make(map[string]int, len(rules))
	for i, r := range rules {
		issue := func(sev Severity, format string, args ...any) {
			issues = append(issues, ValidationIssue{
				Severity: sev,
				Index:    i,
				Rule:     r.Name,
				Message:  fmt.Sprintf(format, args...),
			})
		}

		if r.Name == "" {
			issue(SeverityWarning, "rule has no name")
		} else if prev, dup := seen[r.Name]; dup {
			issue(SeverityWarning, "duplicate rule name, first defined at %d", prev)
		} else {
			seen[r.Name] = i
		}

		switch r.Kind {
		case KindDestination:
			if r.Type != "" {
				issue(SeverityWarning, "destination rule ignores type %q", r.Type)
			}
		case KindDetail:
			if r.Type == "" {
				issue(SeverityError, "detail rule requires a type")
			}
			if r.Destination != "" {
				issue(SeverityWarning, "detail rule ignores destination %q", r.Destination)
			}
		default:
			issue(SeverityError, "invalid kind %q (must be %q or %q)", r.Kind, KindDestination, KindDetail)
		}

		if r.When == "" {
			issue(SeverityError, "rule has no condition")
			continue
		}
		env := ruleEnv(LineItem{}, "", "")
		if _, err := expr.Compile(r.When, expr.Env(env), expr.AsBool()); err != nil {
			issue(SeverityError, "invalid condition %q: %v", r.When, err)
		}
	}
	return issues
}
