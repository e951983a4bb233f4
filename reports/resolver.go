// Package reports determines which standard reports a decision requires and
// where each is addressed. It does not render reports; a Generator
// collaborator does that.
package reports

import (
	"context"
	"slices"

	"github.com/tailored-agentic-units/feasibility/assessment"
	"github.com/tailored-agentic-units/feasibility/decision"
)

// UnassignedUnit is used when neither the bundle nor its section results
// name an owning unit.
const UnassignedUnit = "UNASSIGNED"

var destinations = map[decision.ReportType]assessment.Section{
	decision.ReportLOGSTAT: assessment.SectionLogistics,
	decision.ReportPERSTAT: assessment.SectionPersonnel,
	decision.ReportSPOT:    assessment.SectionIntelligence,
}

// Request is one report that must be produced.
type Request struct {
	Type        decision.ReportType `json:"report_type" yaml:"report_type"`
	OwningUnit  string              `json:"owning_unit" yaml:"owning_unit"`
	Destination assessment.Section  `json:"destination_section" yaml:"destination_section"`
	Reasons     []string            `json:"reasons,omitempty" yaml:"reasons,omitempty"`
}

// Generator produces the requested reports. Implementations live outside
// this module.
type Generator interface {
	Generate(ctx context.Context, record *decision.Record, bundle *assessment.Bundle, requests []Request) error
}

// Destination returns the staff section a report type is addressed to.
// Unknown types route to the command section.
func Destination(rt decision.ReportType) assessment.Section {
	if s, ok := destinations[rt]; ok {
		return s
	}
	return assessment.SectionCommand
}

// Resolve maps a record's required reports to addressed requests, one per
// report type, sorted by type. It is pure: identical inputs yield identical
// output.
func Resolve(record *decision.Record, bundle *assessment.Bundle) []Request {
	if record == nil || len(record.RequiredReports) == 0 {
		return []Request{}
	}

	unit := owningUnit(bundle)
	types := slices.Clone(record.RequiredReports)
	slices.Sort(types)
	types = slices.Compact(types)

	out := make([]Request, 0, len(types))
	for _, rt := range types {
		out = append(out, Request{
			Type:        rt,
			OwningUnit:  unit,
			Destination: Destination(rt),
			Reasons:     reasons(record.Issues, rt),
		})
	}
	return out
}

func owningUnit(b *assessment.Bundle) string {
	if b == nil {
		return UnassignedUnit
	}
	candidates := []string{b.Unit}
	if b.Readiness != nil {
		candidates = append(candidates, b.Readiness.Unit)
	}
	if b.VehicleStatus != nil {
		candidates = append(candidates, b.VehicleStatus.Unit)
	}
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return UnassignedUnit
}

// reasons collects the messages of the issues that triggered rt.
func reasons(issues []decision.Issue, rt decision.ReportType) []string {
	var out []string
	for _, issue := range issues {
		if slices.Contains(issue.Reports(), rt) {
			out = append(out, issue.Message)
		}
	}
	return out
}
