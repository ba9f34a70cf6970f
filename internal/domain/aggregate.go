package domain

// CategoryTotals holds per-category emission sums and activity counts for
// one user over one time window, plus the grand total across categories.
// Every category of the fixed set is present, including zero-valued ones.
type CategoryTotals struct {
	Totals        map[Category]float64
	Counts        map[Category]int
	GrandTotalKg  float64
	ActivityCount int
}

// NewCategoryTotals returns all-zero totals with every category present.
func NewCategoryTotals() CategoryTotals {
	totals := make(map[Category]float64, len(categoryOrder))
	counts := make(map[Category]int, len(categoryOrder))
	for _, c := range categoryOrder {
		totals[c] = 0
		counts[c] = 0
	}
	return CategoryTotals{Totals: totals, Counts: counts}
}

// Aggregate reduces activities falling inside window into CategoryTotals.
// Accumulation is commutative, so input order does not matter, and an empty
// input yields all-zero totals rather than an error.
func Aggregate(activities []Activity, window TimeWindow) CategoryTotals {
	out := NewCategoryTotals()
	for _, a := range activities {
		if !window.Contains(a.OccurredAt) {
			continue
		}
		out.Totals[a.Category] += a.EmissionsKg
		out.Counts[a.Category]++
		out.GrandTotalKg += a.EmissionsKg
		out.ActivityCount++
	}
	return out
}

// AggregateByUser groups activities by owner and aggregates each group,
// used by the leaderboard path.
func AggregateByUser(activities []Activity, window TimeWindow) map[string]CategoryTotals {
	grouped := make(map[string][]Activity)
	for _, a := range activities {
		grouped[a.UserID] = append(grouped[a.UserID], a)
	}
	out := make(map[string]CategoryTotals, len(grouped))
	for userID, group := range grouped {
		out[userID] = Aggregate(group, window)
	}
	return out
}

// CategoryEmission pairs a category with an emission value, used for the
// highest/lowest markers on a weekly summary.
type CategoryEmission struct {
	Category    Category
	EmissionsKg float64
}

// HighestCategory returns the category with the largest total. Ties are
// broken by canonical category order. Returns false when no activities
// were aggregated.
func (ct CategoryTotals) HighestCategory() (CategoryEmission, bool) {
	if ct.ActivityCount == 0 {
		return CategoryEmission{}, false
	}
	best := CategoryEmission{}
	found := false
	for _, c := range categoryOrder {
		if ct.Counts[c] == 0 {
			continue
		}
		if !found || ct.Totals[c] > best.EmissionsKg {
			best = CategoryEmission{Category: c, EmissionsKg: ct.Totals[c]}
			found = true
		}
	}
	return best, found
}

// LowestCategory returns the category with the smallest total among
// categories that have at least one activity. Ties are broken by canonical
// category order.
func (ct CategoryTotals) LowestCategory() (CategoryEmission, bool) {
	if ct.ActivityCount == 0 {
		return CategoryEmission{}, false
	}
	best := CategoryEmission{}
	found := false
	for _, c := range categoryOrder {
		if ct.Counts[c] == 0 {
			continue
		}
		if !found || ct.Totals[c] < best.EmissionsKg {
			best = CategoryEmission{Category: c, EmissionsKg: ct.Totals[c]}
			found = true
		}
	}
	return best, found
}
