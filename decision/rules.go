package decision

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/tailored-agentic-units/feasibility/assessment"
)

type finding struct {
	Issue
	penalty float64
}

// rule inspects one aspect of a bundle. Rules are total over optional
// sections: an absent section yields no findings.
type rule func(p *Policy, b *assessment.Bundle) []finding

var rules = []rule{
	threatRule,
	supplyRule,
	sustainmentRule,
	personnelRule,
	vehicleRule,
	weatherRule,
	terrainRule,
	commsRule,
}

func threatRule(p *Policy, b *assessment.Bundle) []finding {
	t := b.Threat
	if t == nil || t.ThreatLevel == "" {
		return nil
	}
	if !t.ThreatLevel.AtLeast(p.ThreatCriticalLevel) {
		return nil
	}

	area := t.Area
	if area == "" {
		area = b.GridReference
	}
	msg := fmt.Sprintf("Threat level %s in %s meets or exceeds %s", strings.ToUpper(string(t.ThreatLevel)), area, p.ThreatCriticalLevel)
	if t.EnemyActivity != "" {
		msg += fmt.Sprintf(" (%s)", t.EnemyActivity)
	}
	return []finding{{
		Issue: Issue{
			Severity: SeverityCritical,
			Section:  assessment.SectionIntelligence,
			Category: CategoryThreat,
			Message:  msg,
		},
		penalty: p.ThreatPenalty,
	}}
}

func supplyRule(p *Policy, b *assessment.Bundle) []finding {
	if len(b.SupplyLevels) == 0 {
		return nil
	}

	required := b.RequiredDays()
	names := make([]string, 0, len(b.SupplyLevels))
	for name := range b.SupplyLevels {
		names = append(names, name)
	}
	slices.Sort(names)

	var out []finding
	for _, name := range names {
		level := b.SupplyLevels[name]
		if level.DaysRemaining >= required {
			continue
		}
		shortfall := float64(required-level.DaysRemaining) / float64(required)
		out = append(out, shortfallFinding(p, shortfall,
			fmt.Sprintf("%s on hand covers %d of %d required days (%.0f%% shortfall)",
				name, level.DaysRemaining, required, shortfall*100)))
	}
	return out
}

func sustainmentRule(p *Policy, b *assessment.Bundle) []finding {
	s := b.SustainmentProjection
	if s == nil {
		return nil
	}

	var out []finding
	check := func(class string, need int, unit string) {
		if need <= 0 {
			return
		}
		have := 0
		if level, ok := lookupSupply(b.SupplyLevels, class); ok {
			have = level.Quantity
		}
		if have >= need {
			return
		}
		shortfall := float64(need-have) / float64(need)
		out = append(out, shortfallFinding(p, shortfall,
			fmt.Sprintf("Projected %s requirement of %d %s exceeds %d on hand (%.0f%% shortfall)",
				class, need, unit, have, shortfall*100)))
	}

	check(assessment.SupplyMREs, s.RequiredMREs, "meals")
	check(assessment.SupplyFuel, s.RequiredFuelGallons, "gallons")
	return out
}

func shortfallFinding(p *Policy, shortfall float64, msg string) finding {
	f := finding{
		Issue: Issue{
			Severity: SeverityCaution,
			Section:  assessment.SectionLogistics,
			Category: CategorySupply,
			Message:  msg,
		},
		penalty: p.SupplyCautionPenalty,
	}
	if shortfall > p.SupplyCriticalShortfall {
		f.Severity = SeverityCritical
		f.penalty = p.SupplyCriticalPenalty
	}
	return f
}

// lookupSupply matches supply class names case-insensitively so that "MRE",
// "MREs" and "mres" resolve to the same class.
func lookupSupply(levels map[string]assessment.SupplyLevel, class string) (assessment.SupplyLevel, bool) {
	if level, ok := levels[class]; ok {
		return level, true
	}
	want := strings.TrimSuffix(strings.ToLower(class), "s")
	keys := make([]string, 0, len(levels))
	for k := range levels {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if strings.TrimSuffix(strings.ToLower(k), "s") == want {
			return levels[k], true
		}
	}
	return assessment.SupplyLevel{}, false
}

func personnelRule(p *Policy, b *assessment.Bundle) []finding {
	r := b.Readiness
	if r == nil {
		return nil
	}

	unit := r.Unit
	if unit == "" {
		unit = b.Unit
	}

	var out []finding
	if pr := r.PersonnelStrength.ReadinessPercent; pr != nil && float64(*pr) < p.PersonnelReadinessMin {
		out = append(out, readinessFinding(p, assessment.SectionOperations,
			fmt.Sprintf("%s personnel readiness %.0f%% below %.0f%% minimum", unit, float64(*pr), p.PersonnelReadinessMin)))
	}
	if er := r.EquipmentReadiness; er != nil && float64(*er) < p.EquipmentReadinessMin {
		out = append(out, readinessFinding(p, assessment.SectionOperations,
			fmt.Sprintf("%s equipment readiness %.0f%% below %.0f%% minimum", unit, float64(*er), p.EquipmentReadinessMin)))
	}
	return out
}

func vehicleRule(p *Policy, b *assessment.Bundle) []finding {
	v := b.VehicleStatus
	if v == nil {
		return nil
	}
	rate, ok := v.ReadinessRate()
	if !ok || rate >= p.VehicleReadinessMin {
		return nil
	}

	kind := v.VehicleType
	if kind == "" {
		kind = "vehicle"
	}
	return []finding{readinessFinding(p, assessment.SectionLogistics,
		fmt.Sprintf("%s readiness %.1f%% (%d/%d operational) below %.0f%% minimum",
			kind, rate, v.Operational, v.Total, p.VehicleReadinessMin))}
}

func readinessFinding(p *Policy, section assessment.Section, msg string) finding {
	return finding{
		Issue: Issue{
			Severity: SeverityCaution,
			Section:  section,
			Category: CategoryReadiness,
			Message:  msg,
		},
		penalty: p.ReadinessPenalty,
	}
}

func weatherRule(p *Policy, b *assessment.Bundle) []finding {
	w := b.Weather
	if w == nil {
		return nil
	}

	var out []finding
	add := func(msg string) {
		out = append(out, finding{
			Issue: Issue{
				Severity: SeverityCaution,
				Section:  assessment.SectionIntelligence,
				Category: CategoryWeather,
				Message:  msg,
			},
			penalty: p.WeatherPenalty,
		})
	}

	if w.VisibilityMeters != nil && *w.VisibilityMeters < p.VisibilityMinMeters {
		add(fmt.Sprintf("Visibility %d m below %d m minimum", *w.VisibilityMeters, p.VisibilityMinMeters))
	}
	if float64(w.PrecipitationChance) > p.PrecipitationMaxChance {
		add(fmt.Sprintf("Precipitation chance %.0f%% above %.0f%% limit", float64(w.PrecipitationChance), p.PrecipitationMaxChance))
	}
	if w.WindSpeedMPH > p.WindMaxMPH {
		add(fmt.Sprintf("Wind %d mph above %d mph limit", w.WindSpeedMPH, p.WindMaxMPH))
	}
	return out
}

var restrictedMobility = map[string]bool{
	"restricted":          true,
	"severely restricted": true,
	"poor":                true,
	"no-go":               true,
}

func terrainRule(p *Policy, b *assessment.Bundle) []finding {
	t := b.Terrain
	if t == nil {
		return nil
	}
	mobility := strings.ToLower(strings.TrimSpace(t.MobilityAssessment))
	if !restrictedMobility[mobility] {
		return nil
	}

	terrain := t.PrimaryTerrain
	if terrain == "" {
		terrain = "Terrain"
	}
	return []finding{{
		Issue: Issue{
			Severity: SeverityCaution,
			Section:  assessment.SectionIntelligence,
			Category: CategoryTerrain,
			Message:  fmt.Sprintf("%s mobility assessed %s", terrain, t.MobilityAssessment),
		},
		penalty: p.TerrainPenalty,
	}}
}

func commsRule(p *Policy, b *assessment.Bundle) []finding {
	if len(b.Comms) == 0 {
		return nil
	}

	nets := make([]string, 0, len(b.Comms))
	for name := range b.Comms {
		nets = append(nets, name)
	}
	slices.Sort(nets)

	var out []finding
	for _, name := range nets {
		ch := b.Comms[name]
		status := strings.ToUpper(strings.TrimSpace(ch.Status))
		label := name
		if ch.Type != "" {
			label = fmt.Sprintf("%s (%s)", name, ch.Type)
		}

		switch status {
		case "", assessment.ChannelOperational, assessment.ChannelStandby:
			continue
		case assessment.ChannelDown, assessment.ChannelDegraded:
			out = append(out, finding{
				Issue: Issue{
					Severity: SeverityCaution,
					Section:  assessment.SectionOperations,
					Category: CategoryComms,
					Message:  fmt.Sprintf("Comms net %s is %s", label, status),
				},
				penalty: p.CommsCautionPenalty,
			})
		default:
			out = append(out, finding{
				Issue: Issue{
					Severity: SeverityCritical,
					Section:  assessment.SectionOperations,
					Category: CategoryComms,
					Message:  fmt.Sprintf("Comms net %s reports invalid state %s", label, status),
				},
				penalty: p.CommsCriticalPenalty,
			})
		}
	}
	return out
}

func roundScore(score float64) float64 {
	score = math.Max(0, math.Min(1, score))
	return math.Round(score*10000) / 10000
}
