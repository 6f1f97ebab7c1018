package models

import (
	"testing"
	"time"
)

func TestValidatePeriod(t *testing.T) {
	valid := []string{"7D", "3M", "1Y", "7d", "12m", "30D"}
	for _, s := range valid {
		if !ValidatePeriod(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}

	invalid := []string{"7", "D", "7X", "D7", "7DD", "7 D", " 7D", "", "-1D", "1.5M"}
	for _, s := range invalid {
		if ValidatePeriod(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	t.Run("upper-cases unit", func(t *testing.T) {
		p, err := ParsePeriod("3m")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Count != 3 || p.Unit != Month {
			t.Fatalf("expected 3M, got %+v", p)
		}
		if p.String() != "3M" {
			t.Fatalf("expected %q, got %q", "3M", p.String())
		}
	})

	t.Run("rejects invalid", func(t *testing.T) {
		if _, err := ParsePeriod("M3"); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestPeriodAfter(t *testing.T) {
	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		period Period
		want   time.Time
	}{
		{Period{Count: 7, Unit: Day}, time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC)},
		{Period{Count: 1, Unit: Month}, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{Period{Count: 1, Unit: Year}, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := tt.period.After(start); !got.Equal(tt.want) {
			t.Fatalf("%s after %v = %v, want %v", tt.period, start, got, tt.want)
		}
	}
}
