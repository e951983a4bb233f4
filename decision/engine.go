// Package decision implements the operational feasibility decision engine.
// It scores an assessment bundle against a rule set and produces a GO,
// GO_WITH_CAVEATS or NO_GO record with a deterministic narrative and the
// reports the findings require.
//
//	engine := decision.NewEngine(decision.DefaultPolicy())
//	record, err := engine.Evaluate(bundle)
package decision

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/tailored-agentic-units/feasibility/assessment"
)

// Engine evaluates bundles against a Policy. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	policy Policy
}

// NewEngine creates an Engine with the given policy.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Policy returns the engine's policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Evaluate scores bundle and returns a new Record. Returns an error
// wrapping assessment.ErrInvalidInput when the bundle fails validation.
func (e *Engine) Evaluate(bundle *assessment.Bundle) (*Record, error) {
	if err := bundle.Validate(); err != nil {
		return nil, err
	}

	score := 1.0
	var issues []Issue
	for _, r := range rules {
		for _, f := range r(&e.policy, bundle) {
			score -= f.penalty
			issues = append(issues, f.Issue)
		}
	}

	sortIssues(issues)
	if issues == nil {
		issues = []Issue{}
	}

	record := &Record{
		Score:           roundScore(score),
		Issues:          issues,
		RequiredReports: requiredReports(issues),
	}
	record.Decision = e.classify(record)
	record.Narrative = narrative(record)

	return record, nil
}

func (e *Engine) classify(r *Record) Decision {
	if r.HasCritical() {
		return NoGo
	}
	switch {
	case r.Score >= e.policy.GoThreshold:
		return Go
	case r.Score >= e.policy.CaveatThreshold:
		return GoWithCaveats
	default:
		return NoGo
	}
}

// sortIssues orders by severity, worst first, then by section. Rule order
// is kept within ties.
func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		return a.Section < b.Section
	})
}

func requiredReports(issues []Issue) []ReportType {
	var out []ReportType
	for _, issue := range issues {
		out = append(out, issue.Reports()...)
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []ReportType{}
	}
	return out
}

func narrative(r *Record) string {
	var b strings.Builder
	if len(r.Issues) == 0 {
		b.WriteString("No issues identified.\n")
	}
	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "%s [%s] %s.\n", issue.Severity, issue.Section, issue.Message)
	}
	fmt.Fprintf(&b, "DECISION: %s (score %.2f).", r.Decision, r.Score)
	return b.String()
}
