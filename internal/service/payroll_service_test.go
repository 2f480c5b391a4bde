package service

import (
	"testing"
	"time"

	"crmbackend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHours(t *testing.T) {
	tests := []struct {
		name         string
		minutes      int
		wantRegular  string
		wantOvertime string
	}{
		{"under the cap", 100 * 60, "100", "0"},
		{"exactly at the cap", 160 * 60, "160", "0"},
		{"ten hours over", 170 * 60, "160", "10"},
		{"partial hour over", 160*60 + 30, "160", "0.5"},
		{"nothing worked", 0, "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regular, overtime := splitHours(tt.minutes)
			assert.True(t, d(tt.wantRegular).Equal(regular), "regular got %s", regular)
			assert.True(t, d(tt.wantOvertime).Equal(overtime), "overtime got %s", overtime)
		})
	}
}

func TestComputePayHourly(t *testing.T) {
	profile := &model.EmployeeProfile{
		EmploymentType: model.EmploymentHourly,
		HourlyRate:     d("200"),
	}

	base, overtime := computePay(profile, d("160"), d("10"))
	assert.True(t, d("32000").Equal(base))
	// 10h * 200 * 1.5
	assert.True(t, d("3000").Equal(overtime))
}

func TestComputePaySalaried(t *testing.T) {
	profile := &model.EmployeeProfile{
		EmploymentType: model.EmploymentSalary,
		MonthlySalary:  d("32000"),
	}

	// Base pay is the fixed salary regardless of hours worked.
	base, overtime := computePay(profile, d("120"), d("0"))
	assert.True(t, d("32000").Equal(base))
	assert.True(t, overtime.IsZero())

	// Overtime priced off the implied hourly rate 32000/160 = 200.
	_, overtime = computePay(profile, d("160"), d("10"))
	assert.True(t, d("3000").Equal(overtime))
}

func TestCommissionShare(t *testing.T) {
	primary := uuid.New()
	secondary := uuid.New()
	outsider := uuid.New()
	rate := d("5")

	t.Run("primary keeps everything without a secondary", func(t *testing.T) {
		order := &model.Order{
			Value:                d("100000"),
			PrimarySalespersonID: &primary,
			CommissionSplitPct:   d("20"), // ignored without a secondary
		}
		assert.True(t, d("5000").Equal(commissionShare(order, primary, rate)))
	})

	t.Run("split between primary and secondary", func(t *testing.T) {
		order := &model.Order{
			Value:                  d("100000"),
			PrimarySalespersonID:   &primary,
			SecondarySalespersonID: &secondary,
			CommissionSplitPct:     d("20"),
		}
		assert.True(t, d("4000").Equal(commissionShare(order, primary, rate)))
		assert.True(t, d("1000").Equal(commissionShare(order, secondary, rate)))
	})

	t.Run("uninvolved user earns nothing", func(t *testing.T) {
		order := &model.Order{
			Value:                d("100000"),
			PrimarySalespersonID: &primary,
		}
		assert.True(t, commissionShare(order, outsider, rate).IsZero())
	})
}

func TestEstimateSwedishTax(t *testing.T) {
	t.Run("below the state tax threshold", func(t *testing.T) {
		municipal, state, fees, net := estimateSwedishTax(d("40000"))
		assert.True(t, d("12800").Equal(municipal))
		assert.True(t, state.IsZero())
		assert.True(t, d("12568").Equal(fees))
		// Employer fees are informational and not deducted from net.
		assert.True(t, d("27200").Equal(net))
	})

	t.Run("above the state tax threshold", func(t *testing.T) {
		municipal, state, _, net := estimateSwedishTax(d("600000"))
		assert.True(t, d("192000").Equal(municipal))
		// 20% of 600000 - 540700
		assert.True(t, d("11860").Equal(state))
		assert.True(t, d("396140").Equal(net))
	})

	t.Run("zero gross", func(t *testing.T) {
		municipal, state, fees, net := estimateSwedishTax(d("0"))
		assert.True(t, municipal.IsZero())
		assert.True(t, state.IsZero())
		assert.True(t, fees.IsZero())
		assert.True(t, net.IsZero())
	})
}

func TestMonthBounds(t *testing.T) {
	from, to, err := monthBounds(2025, 9)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), to)

	// Year rollover
	from, to, err = monthBounds(2025, 12)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), to)

	_, _, err = monthBounds(2025, 0)
	assert.Error(t, err)
	_, _, err = monthBounds(2025, 13)
	assert.Error(t, err)
}

func TestTimeLogWorkedMinutes(t *testing.T) {
	start := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(8*time.Hour + 30*time.Minute)

	log := &model.TimeLog{StartTime: start, EndTime: &end, BreakMinutes: 30}
	assert.Equal(t, 480, log.WorkedMinutes())

	t.Run("open log counts nothing", func(t *testing.T) {
		open := &model.TimeLog{StartTime: start}
		assert.Equal(t, 0, open.WorkedMinutes())
	})

	t.Run("break longer than the interval clamps to zero", func(t *testing.T) {
		shortEnd := start.Add(20 * time.Minute)
		clamped := &model.TimeLog{StartTime: start, EndTime: &shortEnd, BreakMinutes: 45}
		assert.Equal(t, 0, clamped.WorkedMinutes())
	})
}
