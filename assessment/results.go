package assessment

import "strings"

// Weather is the S-2 weather provider result.
type Weather struct {
	GridReference       string  `json:"grid_reference,omitempty" yaml:"grid_reference,omitempty"`
	Condition           string  `json:"condition,omitempty" yaml:"condition,omitempty"`
	TemperatureF        int     `json:"temperature_f,omitempty" yaml:"temperature_f,omitempty"`
	WindSpeedMPH        int     `json:"wind_speed_mph,omitempty" yaml:"wind_speed_mph,omitempty"`
	VisibilityMeters    *int    `json:"visibility_meters,omitempty" yaml:"visibility_meters,omitempty"`
	PrecipitationChance Percent `json:"precipitation_chance,omitempty" yaml:"precipitation_chance,omitempty"`
}

// Terrain is the S-2 terrain analysis result.
type Terrain struct {
	GridReference      string `json:"grid_reference,omitempty" yaml:"grid_reference,omitempty"`
	PrimaryTerrain     string `json:"primary_terrain,omitempty" yaml:"primary_terrain,omitempty"`
	MobilityAssessment string `json:"mobility_assessment,omitempty" yaml:"mobility_assessment,omitempty"`
	CoverConcealment   string `json:"cover_concealment,omitempty" yaml:"cover_concealment,omitempty"`
}

// ThreatLevel is an ordered threat classification.
type ThreatLevel string

const (
	ThreatLow      ThreatLevel = "LOW"
	ThreatModerate ThreatLevel = "MODERATE"
	ThreatElevated ThreatLevel = "ELEVATED"
	ThreatHigh     ThreatLevel = "HIGH"
	ThreatSevere   ThreatLevel = "SEVERE"
)

var threatRank = map[ThreatLevel]int{
	ThreatLow:      1,
	ThreatModerate: 2,
	ThreatElevated: 3,
	ThreatHigh:     4,
	ThreatSevere:   5,
}

// Rank orders threat levels. Unknown levels rank 0.
func (l ThreatLevel) Rank() int {
	return threatRank[l.normalize()]
}

// Known reports whether l is a recognised level.
func (l ThreatLevel) Known() bool {
	_, ok := threatRank[l.normalize()]
	return ok
}

// AtLeast reports whether l is at or above other.
func (l ThreatLevel) AtLeast(other ThreatLevel) bool {
	return l.Known() && l.Rank() >= other.Rank()
}

func (l ThreatLevel) normalize() ThreatLevel {
	return ThreatLevel(strings.ToUpper(strings.TrimSpace(string(l))))
}

// Threat is the S-2 threat assessment result.
type Threat struct {
	Area               string      `json:"area,omitempty" yaml:"area,omitempty"`
	ThreatLevel        ThreatLevel `json:"threat_level,omitempty" yaml:"threat_level,omitempty"`
	EnemyActivity      string      `json:"enemy_activity,omitempty" yaml:"enemy_activity,omitempty"`
	RecommendedPosture string      `json:"recommended_posture,omitempty" yaml:"recommended_posture,omitempty"`
}

// PersonnelStrength summarises a unit's manning.
type PersonnelStrength struct {
	Assigned         int      `json:"assigned,omitempty" yaml:"assigned,omitempty"`
	Present          int      `json:"present,omitempty" yaml:"present,omitempty"`
	Ready            int      `json:"ready,omitempty" yaml:"ready,omitempty"`
	ReadinessPercent *Percent `json:"readiness_percent,omitempty" yaml:"readiness_percent,omitempty"`
}

// UnitReadiness is the S-3 unit readiness result.
type UnitReadiness struct {
	Unit               string            `json:"unit,omitempty" yaml:"unit,omitempty"`
	PersonnelStrength  PersonnelStrength `json:"personnel_strength" yaml:"personnel_strength"`
	EquipmentReadiness *Percent          `json:"equipment_readiness,omitempty" yaml:"equipment_readiness,omitempty"`
	CRating            string            `json:"c_rating,omitempty" yaml:"c_rating,omitempty"`
	LimitingFactors    []string          `json:"limiting_factors,omitempty" yaml:"limiting_factors,omitempty"`
}

// VehicleStatus is the S-4 vehicle readiness result.
type VehicleStatus struct {
	VehicleType   string `json:"vehicle_type,omitempty" yaml:"vehicle_type,omitempty"`
	Unit          string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Operational   int    `json:"operational" yaml:"operational"`
	InMaintenance int    `json:"in_maintenance,omitempty" yaml:"in_maintenance,omitempty"`
	Total         int    `json:"total" yaml:"total"`
}

// ReadinessRate returns operational/total as a percentage, and false when
// the fleet size is unknown.
func (v VehicleStatus) ReadinessRate() (float64, bool) {
	if v.Total <= 0 {
		return 0, false
	}
	return float64(v.Operational) / float64(v.Total) * 100, true
}

// ChannelStatus values reported by the comms provider.
const (
	ChannelOperational = "OPERATIONAL"
	ChannelStandby     = "STANDBY"
	ChannelDegraded    = "DEGRADED"
	ChannelDown        = "DOWN"
	ChannelError       = "ERROR"
	ChannelAdmin       = "ADMIN"
)

// Channel is one communications net.
type Channel struct {
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
}

// CommsStatus maps net names (primary_net, alternate_net, ...) to their state.
type CommsStatus map[string]Channel

// SupplyLevel is the on-hand state of one supply class.
type SupplyLevel struct {
	Item          string `json:"item,omitempty" yaml:"item,omitempty"`
	Quantity      int    `json:"quantity" yaml:"quantity"`
	Unit          string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Location      string `json:"location,omitempty" yaml:"location,omitempty"`
	DaysRemaining int    `json:"days_remaining" yaml:"days_remaining"`
}

// SustainmentProjection is the projected consumption over the operation.
type SustainmentProjection struct {
	RequiredMREs        int `json:"required_mres" yaml:"required_mres"`
	RequiredFuelGallons int `json:"required_fuel_gallons" yaml:"required_fuel_gallons"`
}
