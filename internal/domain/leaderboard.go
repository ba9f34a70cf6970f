package domain

import (
	"sort"
	"time"
)

// LeaderboardEntry is one ranked row of the leaderboard. Lower total
// emissions rank better. Entries are derived on every request and never
// persisted.
type LeaderboardEntry struct {
	UserID        string
	Username      string
	FullName      string
	TotalKg       float64
	ActivityCount int
	Rank          int

	createdAt time.Time
}

// NewLeaderboardEntry builds an unranked entry for one user. Users with no
// activities participate with zero totals.
func NewLeaderboardEntry(user User, totalKg float64, activityCount int) LeaderboardEntry {
	return LeaderboardEntry{
		UserID:        user.ID,
		Username:      user.Username,
		FullName:      user.FullName,
		TotalKg:       totalKg,
		ActivityCount: activityCount,
		createdAt:     user.CreatedAt,
	}
}

// RankLeaderboard sorts entries ascending by total emissions and assigns
// standard competition ranks: ties share a rank and the sequence skips past
// the tie group. Equal totals are ordered by earliest account creation,
// then by user ID, so the ordering is total and reproducible.
func RankLeaderboard(entries []LeaderboardEntry) []LeaderboardEntry {
	ranked := make([]LeaderboardEntry, len(entries))
	copy(ranked, entries)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalKg != ranked[j].TotalKg {
			return ranked[i].TotalKg < ranked[j].TotalKg
		}
		if !ranked[i].createdAt.Equal(ranked[j].createdAt) {
			return ranked[i].createdAt.Before(ranked[j].createdAt)
		}
		return ranked[i].UserID < ranked[j].UserID
	})

	for i := range ranked {
		if i > 0 && ranked[i].TotalKg == ranked[i-1].TotalKg {
			ranked[i].Rank = ranked[i-1].Rank
			continue
		}
		ranked[i].Rank = i + 1
	}

	return ranked
}
