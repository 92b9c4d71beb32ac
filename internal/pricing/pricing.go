// Package pricing is the single source of truth for delivery price
// estimation. The web app it replaces shipped two divergent calculators
// (a flat base + per-kg one and a package-tier one); this package merges
// them: tier base plus a per-kg charge, scaled by the delivery speed.
package pricing

import (
	"fmt"
	"math"
)

// Package tiers.
const (
	TierSmall     = "SMALL"
	TierMedium    = "MEDIUM"
	TierLarge     = "LARGE"
	TierOversized = "OVERSIZED"
	TierFragile   = "FRAGILE"
)

// Delivery speeds.
const (
	SpeedStandard = "STANDARD"
	SpeedExpress  = "EXPRESS"
	SpeedSameDay  = "SAME_DAY"
)

// Base fares in naira per package tier.
var tierBase = map[string]float64{
	TierSmall:     2500,
	TierMedium:    5000,
	TierLarge:     10000,
	TierOversized: 15000,
	TierFragile:   8000,
}

var speedMultiplier = map[string]float64{
	SpeedStandard: 1,
	SpeedExpress:  1.5,
	SpeedSameDay:  2,
}

// perKgRate is charged on top of the tier base before the speed multiplier.
const perKgRate = 100

// Estimate returns the delivery price for a package. The result is rounded
// to a whole naira.
func Estimate(packageType string, weightKg float64, speed string) (float64, error) {
	base, ok := tierBase[packageType]
	if !ok {
		return 0, fmt.Errorf("pricing: unknown package type %q", packageType)
	}
	mult, ok := speedMultiplier[speed]
	if !ok {
		return 0, fmt.Errorf("pricing: unknown delivery speed %q", speed)
	}
	if weightKg <= 0 {
		return 0, fmt.Errorf("pricing: weight must be positive, got %v", weightKg)
	}
	return math.Round((base + perKgRate*weightKg) * mult), nil
}
