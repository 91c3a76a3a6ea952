package core

import "testing"

func TestMonthlyEquivalent(t *testing.T) {
	tests := []struct {
		name      string
		cents     int64
		frequency Frequency
		want      int64
	}{
		{"weekly", 100000, Weekly, 433333},
		{"weekly rounds half-up", 1000, Weekly, 4333},
		{"biweekly", 100000, Biweekly, 216667},
		{"monthly passthrough", 250000, Monthly, 250000},
		{"quarterly", 300000, Quarterly, 100000},
		{"annually", 1200000, Annually, 100000},
		{"variable treated as monthly", 50000, Variable, 50000},
		{"unrecognized frequency yields zero", 100000, Frequency("daily"), 0},
		{"empty frequency yields zero", 100000, Frequency(""), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyEquivalent(Money{Cents: tt.cents}, tt.frequency)
			if got.Cents != tt.want {
				t.Errorf("MonthlyEquivalent(%d, %s) = %d, want %d", tt.cents, tt.frequency, got.Cents, tt.want)
			}
		})
	}
}

func TestFrequencyValid(t *testing.T) {
	for _, f := range []Frequency{Weekly, Biweekly, Monthly, Quarterly, Annually, Variable} {
		if !f.Valid() {
			t.Errorf("%s should be valid", f)
		}
	}
	if Frequency("fortnightly").Valid() {
		t.Error("fortnightly should not be valid")
	}
}
