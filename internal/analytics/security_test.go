package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"accesslens/internal/model"
)

func deviceRows(categories ...model.SecurityCategory) []model.DeviceAttributes {
	rows := make([]model.DeviceAttributes, len(categories))
	for i, c := range categories {
		rows[i] = model.DeviceAttributes{DoorID: string(rune('a' + i)), SecurityLevel: c}
	}
	return rows
}

func TestAnalyzeSecurityEmptyTable(t *testing.T) {
	s := AnalyzeSecurity(nil, nil)
	assert.Zero(t, s.ComplianceScore)
	assert.Equal(t, "No data", s.SecurityBalance)
	assert.False(t, s.HasAccessMetrics)
}

func TestComplianceScore(t *testing.T) {
	tests := []struct {
		name       string
		categories []model.SecurityCategory
		want       float64
	}{
		{
			name:       "fully classified no red",
			categories: []model.SecurityCategory{model.SecurityGreen, model.SecurityYellow},
			want:       70.0,
		},
		{
			name:       "red share capped at 30",
			categories: []model.SecurityCategory{model.SecurityRed, model.SecurityRed},
			want:       100.0,
		},
		{
			name:       "unknown rows lower completeness",
			categories: []model.SecurityCategory{model.SecurityGreen, model.SecurityUnknown},
			want:       35.0,
		},
		{
			name:       "entirely unclassified table scores zero",
			categories: []model.SecurityCategory{model.SecurityUnknown, model.SecurityUnknown},
			want:       0.0,
		},
		{
			name:       "quarter red adds its exact share",
			categories: []model.SecurityCategory{model.SecurityGreen, model.SecurityGreen, model.SecurityGreen, model.SecurityRed},
			want:       95.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := AnalyzeSecurity(deviceRows(tt.categories...), nil)
			assert.InDelta(t, tt.want, s.ComplianceScore, 1e-9)
			assert.GreaterOrEqual(t, s.ComplianceScore, 0.0)
			assert.LessOrEqual(t, s.ComplianceScore, 100.0)
		})
	}
}

func TestSecurityBalanceLabels(t *testing.T) {
	s := AnalyzeSecurity(deviceRows(model.SecurityRed, model.SecurityRed, model.SecurityGreen), nil)
	assert.Equal(t, "High security focus", s.SecurityBalance)

	s = AnalyzeSecurity(deviceRows(model.SecurityGreen, model.SecurityGreen, model.SecurityGreen, model.SecurityYellow), nil)
	assert.Equal(t, "Low security focus", s.SecurityBalance)

	s = AnalyzeSecurity(deviceRows(model.SecurityGreen, model.SecurityRed), nil)
	assert.Equal(t, "Balanced security", s.SecurityBalance)
}

func TestDenialRate(t *testing.T) {
	attrs := deviceRows(model.SecurityGreen)
	events := []model.AccessEvent{
		{EventType: "ACCESS_GRANTED"},
		{EventType: "ACCESS_DENIED"},
		{EventType: "auth failed"},
		{EventType: "GRANTED"},
	}
	s := AnalyzeSecurity(attrs, events)
	assert.True(t, s.HasAccessMetrics)
	assert.InDelta(t, 50.0, s.DenialRate, 1e-9)
	assert.InDelta(t, 50.0, s.AccessSuccessRate, 1e-9)
}

func TestDistributionPercentagesSumToHundred(t *testing.T) {
	s := AnalyzeSecurity(deviceRows(model.SecurityGreen, model.SecurityYellow, model.SecurityRed, model.SecurityUnknown), nil)
	var sum float64
	for _, pct := range s.DistributionPercentages {
		sum += pct
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}
