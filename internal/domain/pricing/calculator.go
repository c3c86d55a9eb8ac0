package pricing

import (
	"errors"

	"plek/internal/domain/shared/money"
)

var (
	ErrInvalidNights = errors.New("pricing: nights must be positive")
	ErrNegativeRate  = errors.New("pricing: nightly rate cannot be negative")
)

// PackageType selects how the multiplier for a stay is chosen.
type PackageType string

const (
	PackageStandard PackageType = "standard"
	PackageWine     PackageType = "wine"
)

// WineMultiplier overrides the tier multiplier for the wine package: the
// add-on costs more than the plain stay regardless of duration discounts.
const WineMultiplier = 1.15

// ValidPackage reports whether pkg is a known package type.
func ValidPackage(pkg PackageType) bool {
	switch pkg {
	case PackageStandard, PackageWine:
		return true
	}
	return false
}

// MultiplierFor returns the effective multiplier for a stay: the tier
// multiplier for the standard package, the fixed override for add-ons.
func MultiplierFor(pkg PackageType, tier Tier) float64 {
	if pkg == PackageWine {
		return WineMultiplier
	}
	return tier.Multiplier
}

// Total computes baseRate * nights * multiplier in cents.
func Total(baseRate money.Money, nights int, multiplier float64) (money.Money, error) {
	if nights <= 0 {
		return money.Money{}, ErrInvalidNights
	}
	if baseRate.Cents < 0 {
		return money.Money{}, money.ErrNegativeAmount
	}
	return baseRate.Multiply(int64(nights)).MultiplyRate(multiplier), nil
}

// Quote resolves the tier for nights and computes the total for the package.
func Quote(tiers []Tier, baseRate money.Money, nights int, pkg PackageType) (Tier, money.Money, error) {
	tier := Resolve(tiers, nights)
	total, err := Total(baseRate, nights, MultiplierFor(pkg, tier))
	if err != nil {
		return Tier{}, money.Money{}, err
	}
	return tier, total, nil
}
