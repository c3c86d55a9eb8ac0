package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"plek/internal/domain/shared/money"
)

func TestDefaultTiersCoverEveryStayLength(t *testing.T) {
	for nights := 1; nights <= 365; nights++ {
		tier := Resolve(DefaultTiers, nights)
		require.True(t, tier.Contains(nights), "night count %d resolved to tier %q", nights, tier.ID)
	}
}

func TestDefaultTiersAreContiguous(t *testing.T) {
	require.Equal(t, 1, DefaultTiers[0].MinNights)
	for i := 1; i < len(DefaultTiers); i++ {
		require.Equal(t, DefaultTiers[i-1].MaxNights+1, DefaultTiers[i].MinNights,
			"gap between %q and %q", DefaultTiers[i-1].ID, DefaultTiers[i].ID)
	}
}

func TestResolveFallsBackToFirstTier(t *testing.T) {
	require.Equal(t, "night", Resolve(DefaultTiers, 0).ID)
	require.Equal(t, "night", Resolve(DefaultTiers, 400).ID)
}

func TestResolveBoundaries(t *testing.T) {
	cases := map[int]string{
		1: "night", 2: "night",
		3: "getaway", 6: "getaway",
		7: "week", 13: "week",
		14: "fortnight", 29: "fortnight",
		30: "extended", 365: "extended",
	}
	for nights, want := range cases {
		require.Equal(t, want, Resolve(DefaultTiers, nights).ID, "nights=%d", nights)
	}
}

func TestTotal(t *testing.T) {
	// 100.00/night, 7 nights at 0.8 = 560.00
	got, err := Total(money.Must(10000, "EUR"), 7, 0.8)
	require.NoError(t, err)
	require.Equal(t, money.Must(56000, "EUR"), got)

	// single night, no discount
	got, err = Total(money.Must(15000, "EUR"), 1, 1.0)
	require.NoError(t, err)
	require.Equal(t, money.Must(15000, "EUR"), got)

	_, err = Total(money.Must(10000, "EUR"), 0, 1.0)
	require.ErrorIs(t, err, ErrInvalidNights)
}

func TestMultiplierForWineOverridesTier(t *testing.T) {
	week := Resolve(DefaultTiers, 7)
	require.Equal(t, 0.9, MultiplierFor(PackageStandard, week))
	require.Equal(t, WineMultiplier, MultiplierFor(PackageWine, week))
}

func TestQuote(t *testing.T) {
	rate := money.Must(10000, "EUR")

	tier, total, err := Quote(DefaultTiers, rate, 7, PackageStandard)
	require.NoError(t, err)
	require.Equal(t, "week", tier.ID)
	require.Equal(t, int64(63000), total.Cents)

	// wine package ignores the weekly discount
	tier, total, err = Quote(DefaultTiers, rate, 7, PackageWine)
	require.NoError(t, err)
	require.Equal(t, "week", tier.ID)
	require.Equal(t, int64(80500), total.Cents)
}

func TestValidPackage(t *testing.T) {
	require.True(t, ValidPackage(PackageStandard))
	require.True(t, ValidPackage(PackageWine))
	require.False(t, ValidPackage("spa"))
	require.False(t, ValidPackage(""))
}
