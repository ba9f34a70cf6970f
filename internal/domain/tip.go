package domain

// TipPolarity classifies a tip as encouragement or a nudge to improve.
type TipPolarity string

const (
	TipPositive   TipPolarity = "positive"
	TipCorrective TipPolarity = "corrective"
)

// Tip is the single category-scoped message attached to a weekly summary.
type Tip struct {
	Category Category
	Polarity TipPolarity
	Message  string
}

// DefaultTipShareThreshold is the dominant-category share below which a tip
// stays positive: if no single category exceeds 40% of the week's total,
// the emission mix is considered balanced.
const DefaultTipShareThreshold = 0.4

// TipMessages maps category and polarity to message text. Message wording
// is configuration; the selection rule is not.
type TipMessages map[Category]map[TipPolarity]string

// DefaultTipMessages returns the built-in message table.
func DefaultTipMessages() TipMessages {
	return TipMessages{
		CategoryTransport: {
			TipPositive:   "Your transport emissions are well balanced. Keep choosing low-carbon ways to get around.",
			TipCorrective: "Transport is your biggest source this week. Try cycling, public transport, or combining trips.",
		},
		CategoryFood: {
			TipPositive:   "Nice work keeping food emissions in check. Plant-forward meals are paying off.",
			TipCorrective: "Food tops your emissions this week. Swapping a few meat-heavy meals makes a real dent.",
		},
		CategoryEnergy: {
			TipPositive:   "Your energy use looks balanced. Small habits like switching off standby devices add up.",
			TipCorrective: "Energy dominates your footprint this week. Check heating settings and unplug idle devices.",
		},
		CategoryWaste: {
			TipPositive:   "Waste is under control this week. Reusing and recycling is clearly working.",
			TipCorrective: "Waste is your top emitter this week. Composting and avoiding single-use items help most.",
		},
		CategoryWater: {
			TipPositive:   "Water-related emissions look good. Shorter showers keep it that way.",
			TipCorrective: "Water heating leads your emissions this week. Shorter, cooler showers cut it fast.",
		},
		CategoryShopping: {
			TipPositive:   "Shopping emissions are modest this week. Buying less but better works.",
			TipCorrective: "Shopping is your largest source this week. Consider second-hand or simply deferring purchases.",
		},
	}
}

// SelectTip picks the week's tip from aggregated totals: the highest-emitting
// category is the subject, and polarity depends only on that category's share
// of the grand total. Returns nil when the week has no activities.
func SelectTip(totals CategoryTotals, shareThreshold float64, messages TipMessages) *Tip {
	highest, ok := totals.HighestCategory()
	if !ok {
		return nil
	}

	polarity := TipPositive
	if totals.GrandTotalKg > 0 && highest.EmissionsKg/totals.GrandTotalKg >= shareThreshold {
		polarity = TipCorrective
	}

	return &Tip{
		Category: highest.Category,
		Polarity: polarity,
		Message:  messages[highest.Category][polarity],
	}
}
