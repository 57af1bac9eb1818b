package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pass() CheckResult { return CheckResult{Checked: true, Passed: true} }
func fail() CheckResult { return CheckResult{Checked: true, Passed: false} }

func TestAggregate(t *testing.T) {
	tests := []struct {
		name       string
		scam       CheckResult
		sanctions  CheckResult
		audit      CheckResult
		wantRisk   RiskLevel
		wantPassed bool
	}{
		{"all clear", pass(), pass(), pass(), RiskLow, true},
		{"audit unverified", pass(), pass(), fail(), RiskMedium, true},
		{"scam flagged", fail(), pass(), pass(), RiskMedium, false},
		{"sanctions hit", pass(), fail(), pass(), RiskHigh, false},
		{"everything failing", fail(), fail(), fail(), RiskHigh, false},
		{
			name:       "sanctions override clears hit",
			scam:       pass(),
			sanctions:  CheckResult{Checked: true, Passed: false, ManualOverride: true, ManualPassed: true},
			audit:      pass(),
			wantRisk:   RiskLow,
			wantPassed: true,
		},
		{
			name:       "audit override verifies",
			scam:       pass(),
			sanctions:  pass(),
			audit:      CheckResult{Checked: true, Passed: false, ManualOverride: true, ManualPassed: true},
			wantRisk:   RiskLow,
			wantPassed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Aggregate(tt.scam, tt.sanctions, tt.audit)
			assert.Equal(t, tt.wantRisk, v.RiskLevel)
			assert.Equal(t, tt.wantPassed, v.OverallPassed)
		})
	}
}

func TestAggregateManualOverridePrecedence(t *testing.T) {
	scam := CheckResult{Checked: true, Passed: true, ManualOverride: true, ManualPassed: false}

	v := Aggregate(scam, pass(), pass())
	assert.False(t, v.OverallPassed)
	assert.Equal(t, RiskMedium, v.RiskLevel)

	// manual value ignored once the override is lifted
	scam.ManualOverride = false
	assert.True(t, Aggregate(scam, pass(), pass()).OverallPassed)
}

func TestAggregateIsPure(t *testing.T) {
	bools := []bool{false, true}
	for _, sp := range bools {
		for _, np := range bools {
			for _, ap := range bools {
				for _, mo := range bools {
					scam := CheckResult{Checked: true, Passed: sp, ManualOverride: mo, ManualPassed: !sp}
					sanctions := CheckResult{Checked: true, Passed: np}
					audit := CheckResult{Checked: true, Passed: ap}

					first := Aggregate(scam, sanctions, audit)
					second := Aggregate(scam, sanctions, audit)
					assert.Equal(t, first, second)
					assert.Equal(t, first.RiskLevel == RiskHigh, !np)
				}
			}
		}
	}
}

func TestAggregateUnknownChecks(t *testing.T) {
	unknown := CheckResult{}

	tests := []struct {
		name       string
		scam       CheckResult
		sanctions  CheckResult
		audit      CheckResult
		wantRisk   RiskLevel
		wantPassed bool
	}{
		{"nothing ran", unknown, unknown, unknown, RiskMedium, false},
		{"sanctions not run", pass(), unknown, pass(), RiskMedium, false},
		{"scam not run", unknown, pass(), pass(), RiskMedium, false},
		{"audit not run", pass(), pass(), unknown, RiskMedium, true},
		{"sanctions hit with scam unknown", unknown, fail(), pass(), RiskHigh, false},
		{
			name:       "override alone makes a check known",
			scam:       CheckResult{ManualOverride: true, ManualPassed: true},
			sanctions:  CheckResult{ManualOverride: true, ManualPassed: true},
			audit:      pass(),
			wantRisk:   RiskLow,
			wantPassed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Aggregate(tt.scam, tt.sanctions, tt.audit)
			assert.Equal(t, tt.wantRisk, v.RiskLevel)
			assert.Equal(t, tt.wantPassed, v.OverallPassed)
		})
	}
}
