package assessment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/feasibility/assessment"
)

func TestCalculateSustainment(t *testing.T) {
	rates := assessment.DefaultConsumptionRates()

	tests := []struct {
		name      string
		personnel int
		hours     int
		wantMREs  int
		wantFuel  int
	}{
		{name: "one day", personnel: 100, hours: 24, wantMREs: 300, wantFuel: 1200},
		{name: "three days", personnel: 120, hours: 72, wantMREs: 1080, wantFuel: 3600},
		{name: "short op rounds up to a day", personnel: 40, hours: 6, wantMREs: 120, wantFuel: 300},
		{name: "rounds to nearest day", personnel: 10, hours: 35, wantMREs: 30, wantFuel: 1750},
		{name: "no personnel", personnel: 0, hours: 48, wantMREs: 0, wantFuel: 2400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := assessment.CalculateSustainment(tt.personnel, tt.hours, rates)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMREs, got.RequiredMREs)
			assert.Equal(t, tt.wantFuel, got.RequiredFuelGallons)
		})
	}
}

func TestCalculateSustainment_InvalidInput(t *testing.T) {
	rates := assessment.DefaultConsumptionRates()

	_, err := assessment.CalculateSustainment(10, 0, rates)
	assert.ErrorIs(t, err, assessment.ErrInvalidInput)

	_, err = assessment.CalculateSustainment(-1, 24, rates)
	assert.ErrorIs(t, err, assessment.ErrInvalidInput)
}

func TestConsumptionRates_Merge(t *testing.T) {
	r := assessment.DefaultConsumptionRates()
	r.Merge(&assessment.ConsumptionRates{FuelGallonsPerHour: 35})

	assert.Equal(t, 3.0, r.MREsPerPersonDay)
	assert.Equal(t, 35.0, r.FuelGallonsPerHour)
}
