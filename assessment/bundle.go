// Package assessment defines the inputs to a feasibility decision: the
// per-section provider results and the AssessmentBundle that snapshots them
// for one proposed operation.
package assessment

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Well-known supply class names.
const (
	SupplyMREs = "MREs"
	SupplyFuel = "fuel"
)

// Bundle is an immutable snapshot of everything needed for one feasibility
// decision. Section results are optional; a nil section raises no issue.
type Bundle struct {
	OperationName string    `json:"operation_name" yaml:"operation_name"`
	GridReference string    `json:"grid_reference" yaml:"grid_reference"`
	StartTime     time.Time `json:"start_time" yaml:"start_time"`
	DurationHours int       `json:"duration_hours" yaml:"duration_hours"`
	Unit          string    `json:"unit,omitempty" yaml:"unit,omitempty"`

	Weather       *Weather       `json:"weather,omitempty" yaml:"weather,omitempty"`
	Terrain       *Terrain       `json:"terrain,omitempty" yaml:"terrain,omitempty"`
	Threat        *Threat        `json:"threat,omitempty" yaml:"threat,omitempty"`
	Readiness     *UnitReadiness `json:"readiness,omitempty" yaml:"readiness,omitempty"`
	VehicleStatus *VehicleStatus `json:"vehicle_status,omitempty" yaml:"vehicle_status,omitempty"`
	Comms         CommsStatus    `json:"comms,omitempty" yaml:"comms,omitempty"`

	SupplyLevels          map[string]SupplyLevel `json:"supply_levels,omitempty" yaml:"supply_levels,omitempty"`
	SustainmentProjection *SustainmentProjection `json:"sustainment_projection,omitempty" yaml:"sustainment_projection,omitempty"`
}

// RequiredDays is the number of days of supply the operation consumes:
// duration rounded up to whole days, never less than one.
func (b *Bundle) RequiredDays() int {
	days := int(math.Ceil(float64(b.DurationHours) / 24))
	return max(days, 1)
}

// Validate checks the structural preconditions the decision rules rely on.
// All failures wrap ErrInvalidInput.
func (b *Bundle) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: bundle is nil", ErrInvalidInput)
	}
	if b.DurationHours <= 0 {
		return fmt.Errorf("%w: duration_hours must be positive, got %d", ErrInvalidInput, b.DurationHours)
	}

	for name, level := range b.SupplyLevels {
		if level.Quantity < 0 || level.DaysRemaining < 0 {
			return fmt.Errorf("%w: supply class %q has negative quantity or days_remaining", ErrInvalidInput, name)
		}
	}

	if s := b.SustainmentProjection; s != nil {
		if s.RequiredMREs < 0 || s.RequiredFuelGallons < 0 {
			return fmt.Errorf("%w: sustainment projection has negative requirements", ErrInvalidInput)
		}
	}

	if v := b.VehicleStatus; v != nil {
		if v.Operational < 0 || v.Total < 0 || v.InMaintenance < 0 {
			return fmt.Errorf("%w: vehicle counts must not be negative", ErrInvalidInput)
		}
		if v.Operational > v.Total {
			return fmt.Errorf("%w: %d operational vehicles exceeds total %d", ErrInvalidInput, v.Operational, v.Total)
		}
	}

	if w := b.Weather; w != nil {
		if err := checkPercent("weather precipitation_chance", &w.PrecipitationChance); err != nil {
			return err
		}
	}
	if r := b.Readiness; r != nil {
		if err := checkPercent("personnel readiness_percent", r.PersonnelStrength.ReadinessPercent); err != nil {
			return err
		}
		if err := checkPercent("equipment_readiness", r.EquipmentReadiness); err != nil {
			return err
		}
	}

	if t := b.Threat; t != nil && t.ThreatLevel != "" && !t.ThreatLevel.Known() {
		return fmt.Errorf("%w: unknown threat level %q", ErrInvalidInput, t.ThreatLevel)
	}

	return nil
}

func checkPercent(field string, p *Percent) error {
	if p == nil || p.Valid() {
		return nil
	}
	return fmt.Errorf("%w: %s %v outside 0-100", ErrInvalidInput, field, float64(*p))
}

// Hash returns a hex SHA-256 of the bundle's canonical JSON encoding.
// Structurally equal bundles hash equally: encoding/json sorts map keys.
func (b *Bundle) Hash() (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("hash bundle: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
