package pricing

import "testing"

func TestEstimate(t *testing.T) {
	cases := []struct {
		name    string
		tier    string
		weight  float64
		speed   string
		want    float64
		wantErr bool
	}{
		// The two legacy calculators disagreed on this exact request:
		// the provider page said (5000 + 100*10) * 2 = 12000, the buyer
		// request page said 5000 * 2 = 10000. Unified answer is 12000.
		{"medium same-day 10kg", TierMedium, 10, SpeedSameDay, 12000, false},
		{"small standard 1kg", TierSmall, 1, SpeedStandard, 2600, false},
		{"large express 5kg", TierLarge, 5, SpeedExpress, 15750, false},
		{"fragile same-day 2kg", TierFragile, 2, SpeedSameDay, 16400, false},
		{"oversized standard 20kg", TierOversized, 20, SpeedStandard, 17000, false},
		{"fractional weight rounds", TierSmall, 0.5, SpeedExpress, 3825, false},
		{"unknown tier", "HUGE", 1, SpeedStandard, 0, true},
		{"unknown speed", TierSmall, 1, "OVERNIGHT", 0, true},
		{"zero weight", TierSmall, 0, SpeedStandard, 0, true},
		{"negative weight", TierSmall, -2, SpeedStandard, 0, true},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Estimate(tt.tier, tt.weight, tt.speed)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Estimate(%s, %v, %s) expected error, got %v", tt.tier, tt.weight, tt.speed, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Estimate(%s, %v, %s) error: %v", tt.tier, tt.weight, tt.speed, err)
			}
			if got != tt.want {
				t.Errorf("Estimate(%s, %v, %s) = %v; want %v", tt.tier, tt.weight, tt.speed, got, tt.want)
			}
		})
	}
}

func TestEstimateIsExactFormula(t *testing.T) {
	// For all valid pairs the result must be (base + 100*kg) * multiplier.
	tiers := map[string]float64{TierSmall: 2500, TierMedium: 5000, TierLarge: 10000, TierOversized: 15000, TierFragile: 8000}
	speeds := map[string]float64{SpeedStandard: 1, SpeedExpress: 1.5, SpeedSameDay: 2}
	for tier, base := range tiers {
		for speed, mult := range speeds {
			got, err := Estimate(tier, 4, speed)
			if err != nil {
				t.Fatalf("Estimate(%s, 4, %s) error: %v", tier, speed, err)
			}
			want := (base + 400) * mult
			if got != want {
				t.Errorf("Estimate(%s, 4, %s) = %v; want %v", tier, speed, got, want)
			}
		}
	}
}
