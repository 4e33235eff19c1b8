package recommendation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"carepath/internal/patient"
)

func TestGenerateLabels(t *testing.T) {
	tests := []struct {
		name  string
		attrs patient.Attributes
		want  []string
	}{
		{
			name:  "healthy adult falls back to checkup",
			attrs: patient.Attributes{Age: 30, BMI: 25.0},
			want:  []string{LabelGeneralCheckup},
		},
		{
			name:  "elderly with chronic pain and high bmi",
			attrs: patient.Attributes{Age: 67, BMI: 37.0, ChronicPain: true},
			want:  []string{LabelPhysicalTherapy, LabelWeightManagement},
		},
		{
			name:  "all three clauses match in priority order",
			attrs: patient.Attributes{Age: 67, BMI: 35.0, ChronicPain: true, RecentSurgery: true},
			want:  []string{LabelPostOpRehab, LabelPhysicalTherapy, LabelWeightManagement},
		},
		{
			name:  "recent surgery alone",
			attrs: patient.Attributes{Age: 40, BMI: 22.0, RecentSurgery: true},
			want:  []string{LabelPostOpRehab},
		},
		{
			name:  "age 65 is not elderly",
			attrs: patient.Attributes{Age: 65, BMI: 24.0, ChronicPain: true},
			want:  []string{LabelGeneralCheckup},
		},
		{
			name:  "age 66 with chronic pain",
			attrs: patient.Attributes{Age: 66, BMI: 24.0, ChronicPain: true},
			want:  []string{LabelPhysicalTherapy},
		},
		{
			name:  "elderly without chronic pain gets checkup",
			attrs: patient.Attributes{Age: 80, BMI: 24.0},
			want:  []string{LabelGeneralCheckup},
		},
		{
			name:  "bmi exactly 30 is below threshold",
			attrs: patient.Attributes{Age: 30, BMI: 30.0},
			want:  []string{LabelGeneralCheckup},
		},
		{
			name:  "bmi just above threshold",
			attrs: patient.Attributes{Age: 30, BMI: 30.1},
			want:  []string{LabelWeightManagement},
		},
		{
			name:  "zero value attributes",
			attrs: patient.Attributes{},
			want:  []string{LabelGeneralCheckup},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateLabels(tt.attrs))
		})
	}
}

func TestGenerateLabelsIsDeterministic(t *testing.T) {
	attrs := patient.Attributes{Age: 70, BMI: 32.0, ChronicPain: true, RecentSurgery: true}
	first := GenerateLabels(attrs)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, GenerateLabels(attrs))
	}
}

func TestDayWindow(t *testing.T) {
	t.Run("mid-day timestamp", func(t *testing.T) {
		from, to := DayWindow(time.Date(2025, 6, 15, 13, 45, 12, 0, time.UTC))
		assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), from)
		assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), to)
	})

	t.Run("non-UTC input converts before truncation", func(t *testing.T) {
		// 23:30 on the 14th in UTC-5 is 04:30 on the 15th in UTC.
		loc := time.FixedZone("UTC-5", -5*3600)
		from, _ := DayWindow(time.Date(2025, 6, 14, 23, 30, 0, 0, loc))
		assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), from)
	})
}
