package decision

import (
	"slices"

	"github.com/tailored-agentic-units/feasibility/assessment"
)

// Decision classifies whether a proposed operation should proceed.
type Decision string

const (
	Go            Decision = "GO"
	GoWithCaveats Decision = "GO_WITH_CAVEATS"
	NoGo          Decision = "NO_GO"
)

// Severity grades an issue. Ordering: CRITICAL > CAUTION > INFO.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityCaution  Severity = "CAUTION"
	SeverityCritical Severity = "CRITICAL"
)

// Rank orders severities, higher is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityCaution:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Category records which rule family raised an issue. Report requirements
// are derived from categories, never from message text.
type Category string

const (
	CategoryThreat    Category = "threat"
	CategorySupply    Category = "supply"
	CategoryReadiness Category = "readiness"
	CategoryWeather   Category = "weather"
	CategoryTerrain   Category = "terrain"
	CategoryComms     Category = "comms"
)

// ReportType identifies a standard report.
type ReportType string

const (
	ReportLOGSTAT ReportType = "LOGSTAT"
	ReportPERSTAT ReportType = "PERSTAT"
	ReportSPOT    ReportType = "SPOT"
)

// Issue is one finding raised by a rule.
type Issue struct {
	Severity Severity           `json:"severity" yaml:"severity"`
	Section  assessment.Section `json:"section" yaml:"section"`
	Category Category           `json:"category" yaml:"category"`
	Message  string             `json:"message" yaml:"message"`
}

// Reports returns the report types this issue requires: a critical supply
// shortfall needs a LOGSTAT, a readiness shortfall a PERSTAT, and any threat
// finding a SPOT report.
func (i Issue) Reports() []ReportType {
	switch i.Category {
	case CategorySupply:
		if i.Severity == SeverityCritical {
			return []ReportType{ReportLOGSTAT}
		}
	case CategoryReadiness:
		if i.Severity == SeverityCritical || i.Severity == SeverityCaution {
			return []ReportType{ReportPERSTAT}
		}
	case CategoryThreat:
		return []ReportType{ReportSPOT}
	}
	return nil
}

// Record is the outcome of one evaluation. Records are never mutated after
// Evaluate returns; use Clone before modifying a copy.
type Record struct {
	Decision        Decision     `json:"decision" yaml:"decision"`
	Score           float64      `json:"score" yaml:"score"`
	Issues          []Issue      `json:"issues" yaml:"issues"`
	RequiredReports []ReportType `json:"required_reports" yaml:"required_reports"`
	Narrative       string       `json:"narrative" yaml:"narrative"`
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Issues = slices.Clone(r.Issues)
	c.RequiredReports = slices.Clone(r.RequiredReports)
	return &c
}

// HasCritical reports whether any issue is CRITICAL.
func (r *Record) HasCritical() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Evaluator produces a Record for a bundle.
type Evaluator interface {
	Evaluate(bundle *assessment.Bundle) (*Record, error)
}
