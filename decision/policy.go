package decision

import (
	"github.com/tailored-agentic-units/feasibility/assessment"
)

// Policy holds the scoring thresholds and penalties. The defaults are
// demonstration constants; every value may be overridden from config.
type Policy struct {
	GoThreshold     float64 `json:"go_threshold,omitempty" yaml:"go_threshold,omitempty"`
	CaveatThreshold float64 `json:"caveat_threshold,omitempty" yaml:"caveat_threshold,omitempty"`

	ThreatCriticalLevel assessment.ThreatLevel `json:"threat_critical_level,omitempty" yaml:"threat_critical_level,omitempty"`
	ThreatPenalty       float64                `json:"threat_penalty,omitempty" yaml:"threat_penalty,omitempty"`

	SupplyCriticalShortfall float64 `json:"supply_critical_shortfall,omitempty" yaml:"supply_critical_shortfall,omitempty"`
	SupplyCriticalPenalty   float64 `json:"supply_critical_penalty,omitempty" yaml:"supply_critical_penalty,omitempty"`
	SupplyCautionPenalty    float64 `json:"supply_caution_penalty,omitempty" yaml:"supply_caution_penalty,omitempty"`

	VehicleReadinessMin   float64 `json:"vehicle_readiness_min,omitempty" yaml:"vehicle_readiness_min,omitempty"`
	PersonnelReadinessMin float64 `json:"personnel_readiness_min,omitempty" yaml:"personnel_readiness_min,omitempty"`
	EquipmentReadinessMin float64 `json:"equipment_readiness_min,omitempty" yaml:"equipment_readiness_min,omitempty"`
	ReadinessPenalty      float64 `json:"readiness_penalty,omitempty" yaml:"readiness_penalty,omitempty"`

	VisibilityMinMeters    int     `json:"visibility_min_meters,omitempty" yaml:"visibility_min_meters,omitempty"`
	PrecipitationMaxChance float64 `json:"precipitation_max_chance,omitempty" yaml:"precipitation_max_chance,omitempty"`
	WindMaxMPH             int     `json:"wind_max_mph,omitempty" yaml:"wind_max_mph,omitempty"`
	WeatherPenalty         float64 `json:"weather_penalty,omitempty" yaml:"weather_penalty,omitempty"`

	TerrainPenalty float64 `json:"terrain_penalty,omitempty" yaml:"terrain_penalty,omitempty"`

	CommsCautionPenalty  float64 `json:"comms_caution_penalty,omitempty" yaml:"comms_caution_penalty,omitempty"`
	CommsCriticalPenalty float64 `json:"comms_critical_penalty,omitempty" yaml:"comms_critical_penalty,omitempty"`
}

// DefaultPolicy returns the baseline thresholds.
func DefaultPolicy() Policy {
	return Policy{
		GoThreshold:     0.8,
		CaveatThreshold: 0.5,

		ThreatCriticalLevel: assessment.ThreatElevated,
		ThreatPenalty:       0.5,

		SupplyCriticalShortfall: 0.5,
		SupplyCriticalPenalty:   0.4,
		SupplyCautionPenalty:    0.15,

		VehicleReadinessMin:   70,
		PersonnelReadinessMin: 85,
		EquipmentReadinessMin: 80,
		ReadinessPenalty:      0.1,

		VisibilityMinMeters:    5000,
		PrecipitationMaxChance: 60,
		WindMaxMPH:             20,
		WeatherPenalty:         0.1,

		TerrainPenalty: 0.1,

		CommsCautionPenalty:  0.15,
		CommsCriticalPenalty: 0.5,
	}
}

// Merge applies non-zero values from source into p.
func (p *Policy) Merge(source *Policy) {
	mergeFloat(&p.GoThreshold, source.GoThreshold)
	mergeFloat(&p.CaveatThreshold, source.CaveatThreshold)

	if source.ThreatCriticalLevel != "" {
		p.ThreatCriticalLevel = source.ThreatCriticalLevel
	}
	mergeFloat(&p.ThreatPenalty, source.ThreatPenalty)

	mergeFloat(&p.SupplyCriticalShortfall, source.SupplyCriticalShortfall)
	mergeFloat(&p.SupplyCriticalPenalty, source.SupplyCriticalPenalty)
	mergeFloat(&p.SupplyCautionPenalty, source.SupplyCautionPenalty)

	mergeFloat(&p.VehicleReadinessMin, source.VehicleReadinessMin)
	mergeFloat(&p.PersonnelReadinessMin, source.PersonnelReadinessMin)
	mergeFloat(&p.EquipmentReadinessMin, source.EquipmentReadinessMin)
	mergeFloat(&p.ReadinessPenalty, source.ReadinessPenalty)

	if source.VisibilityMinMeters > 0 {
		p.VisibilityMinMeters = source.VisibilityMinMeters
	}
	mergeFloat(&p.PrecipitationMaxChance, source.PrecipitationMaxChance)
	if source.WindMaxMPH > 0 {
		p.WindMaxMPH = source.WindMaxMPH
	}
	mergeFloat(&p.WeatherPenalty, source.WeatherPenalty)

	mergeFloat(&p.TerrainPenalty, source.TerrainPenalty)

	mergeFloat(&p.CommsCautionPenalty, source.CommsCautionPenalty)
	mergeFloat(&p.CommsCriticalPenalty, source.CommsCriticalPenalty)
}

func mergeFloat(dst *float64, src float64) {
	if src > 0 {
		*dst = src
	}
}
