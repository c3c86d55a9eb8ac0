package pricing

// Tier is a named pricing bracket keyed by a stay-length range in nights.
// The table is ordered; [MinNights, MaxNights] intervals are contiguous and
// non-overlapping.
type Tier struct {
	ID         string
	Label      string
	MinNights  int
	MaxNights  int
	Multiplier float64
}

// DefaultTiers is the canonical tier table. It spans every stay length from a
// single night to a full year.
var DefaultTiers = []Tier{
	{ID: "night", Label: "Nightly", MinNights: 1, MaxNights: 2, Multiplier: 1.0},
	{ID: "getaway", Label: "Getaway", MinNights: 3, MaxNights: 6, Multiplier: 0.95},
	{ID: "week", Label: "Weekly", MinNights: 7, MaxNights: 13, Multiplier: 0.9},
	{ID: "fortnight", Label: "Fortnight", MinNights: 14, MaxNights: 29, Multiplier: 0.85},
	{ID: "extended", Label: "Extended stay", MinNights: 30, MaxNights: 365, Multiplier: 0.8},
}

// Resolve returns the first tier whose range contains nights. Out-of-table
// input degrades to the first tier so a quote is always produced.
func Resolve(tiers []Tier, nights int) Tier {
	for _, t := range tiers {
		if nights >= t.MinNights && nights <= t.MaxNights {
			return t
		}
	}
	return tiers[0]
}

func (t Tier) Contains(nights int) bool {
	return nights >= t.MinNights && nights <= t.MaxNights
}
