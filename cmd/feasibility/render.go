package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tailored-agentic-units/feasibility/decision"
	"github.com/tailored-agentic-units/feasibility/feasibility"
	"github.com/tailored-agentic-units/feasibility/stats"
)

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	goStyle     = bannerStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42"))
	caveatStyle = bannerStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214"))
	noGoStyle   = bannerStyle.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("160"))

	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
	cautionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func decisionStyle(d decision.Decision) lipgloss.Style {
	switch d {
	case decision.Go:
		return goStyle
	case decision.GoWithCaveats:
		return caveatStyle
	default:
		return noGoStyle
	}
}

func severityStyle(s decision.Severity) lipgloss.Style {
	switch s {
	case decision.SeverityCritical:
		return criticalStyle
	case decision.SeverityCaution:
		return cautionStyle
	default:
		return infoStyle
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderResult(w io.Writer, res *feasibility.Result) {
	rec := res.Record
	b := res.Bundle

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s\n", headerStyle.Render("FEASIBILITY"), b.OperationName)
	fmt.Fprintf(&sb, "AO: %s | DUR: %d hrs", b.GridReference, b.DurationHours)
	if !b.StartTime.IsZero() {
		fmt.Fprintf(&sb, " | SP: %s", b.StartTime.UTC().Format("021504Z Jan 06"))
	}
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "%s  score %.2f\n\n", decisionStyle(rec.Decision).Render(string(rec.Decision)), rec.Score)

	if len(rec.Issues) > 0 {
		sb.WriteString(headerStyle.Render("ISSUES") + "\n")
		for _, issue := range rec.Issues {
			fmt.Fprintf(&sb, "  %s [%s] %s\n",
				severityStyle(issue.Severity).Render(fmt.Sprintf("%-8s", issue.Severity)),
				issue.Section, issue.Message)
		}
		sb.WriteString("\n")
	}

	if len(res.Reports) > 0 {
		sb.WriteString(headerStyle.Render("REQUIRED REPORTS") + "\n")
		for _, r := range res.Reports {
			fmt.Fprintf(&sb, "  %-8s %s -> %s\n", r.Type, r.OwningUnit, r.Destination)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(headerStyle.Render("NARRATIVE") + "\n")
	sb.WriteString(rec.Narrative + "\n")

	fmt.Fprint(w, sb.String())
}

func renderStats(w io.Writer, snap stats.Snapshot) {
	fmt.Fprintf(w, "\n%s calls=%d avg=%.3fs S-2=%d S-3=%d S-4=%d\n",
		headerStyle.Render("SESSION"),
		snap.TotalCalls, snap.AvgResponseTime,
		snap.Calls("S-2"), snap.Calls("S-3"), snap.Calls("S-4"))
}
