package assessment

import (
	"fmt"
	"math"
)

// ConsumptionRates are planning factors for sustainment projection.
type ConsumptionRates struct {
	MREsPerPersonDay   float64 `json:"mres_per_person_day,omitempty" yaml:"mres_per_person_day,omitempty"`
	FuelGallonsPerHour float64 `json:"fuel_gallons_per_hour,omitempty" yaml:"fuel_gallons_per_hour,omitempty"`
}

// DefaultConsumptionRates returns three MREs per person per day and
// fifty gallons of fuel per operating hour.
func DefaultConsumptionRates() ConsumptionRates {
	return ConsumptionRates{
		MREsPerPersonDay:   3.0,
		FuelGallonsPerHour: 50.0,
	}
}

// Merge applies non-zero values from source into r.
func (r *ConsumptionRates) Merge(source *ConsumptionRates) {
	if source.MREsPerPersonDay > 0 {
		r.MREsPerPersonDay = source.MREsPerPersonDay
	}
	if source.FuelGallonsPerHour > 0 {
		r.FuelGallonsPerHour = source.FuelGallonsPerHour
	}
}

// CalculateSustainment projects MRE and fuel requirements for personnel
// over durationHours. Days are rounded to the nearest whole day, minimum one.
func CalculateSustainment(personnel, durationHours int, rates ConsumptionRates) (SustainmentProjection, error) {
	if durationHours <= 0 {
		return SustainmentProjection{}, fmt.Errorf("%w: duration_hours must be positive, got %d", ErrInvalidInput, durationHours)
	}
	if personnel < 0 {
		return SustainmentProjection{}, fmt.Errorf("%w: personnel count must not be negative", ErrInvalidInput)
	}

	days := max(int(math.Round(float64(durationHours)/24)), 1)
	return SustainmentProjection{
		RequiredMREs:        int(float64(personnel*days) * rates.MREsPerPersonDay),
		RequiredFuelGallons: int(float64(durationHours) * rates.FuelGallonsPerHour),
	}, nil
}
