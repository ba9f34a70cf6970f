package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func leaderboardUser(id string, createdAt time.Time) User {
	return User{ID: id, Username: id, FullName: id, CreatedAt: createdAt}
}

func TestRankLeaderboardOrdersAscendingByEmissions(t *testing.T) {
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	entries := []LeaderboardEntry{
		NewLeaderboardEntry(leaderboardUser("heavy", base), 40, 12),
		NewLeaderboardEntry(leaderboardUser("light", base), 2, 3),
		NewLeaderboardEntry(leaderboardUser("middle", base), 15, 8),
	}

	ranked := RankLeaderboard(entries)

	require.Equal(t, []string{"light", "middle", "heavy"}, []string{ranked[0].UserID, ranked[1].UserID, ranked[2].UserID})
	for i := 1; i < len(ranked); i++ {
		require.LessOrEqual(t, ranked[i-1].TotalKg, ranked[i].TotalKg)
	}
	require.Equal(t, 1, ranked[0].Rank)
	require.Equal(t, 2, ranked[1].Rank)
	require.Equal(t, 3, ranked[2].Rank)
}

func TestRankLeaderboardTiesShareRankAndSkip(t *testing.T) {
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	entries := []LeaderboardEntry{
		NewLeaderboardEntry(leaderboardUser("a", base.AddDate(0, 0, 2)), 0, 0),
		NewLeaderboardEntry(leaderboardUser("b", base.AddDate(0, 0, 1)), 5, 2),
		NewLeaderboardEntry(leaderboardUser("c", base), 5, 4),
	}

	ranked := RankLeaderboard(entries)

	// a has zero emissions and leads; c beats the tie with b by earlier signup.
	require.Equal(t, "a", ranked[0].UserID)
	require.Equal(t, "c", ranked[1].UserID)
	require.Equal(t, "b", ranked[2].UserID)
	require.Equal(t, 1, ranked[0].Rank)
	require.Equal(t, 2, ranked[1].Rank)
	require.Equal(t, 2, ranked[2].Rank)
}

func TestRankLeaderboardTiedLeadersSkipToThird(t *testing.T) {
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	entries := []LeaderboardEntry{
		NewLeaderboardEntry(leaderboardUser("a", base.AddDate(0, 0, 5)), 0, 0),
		NewLeaderboardEntry(leaderboardUser("b", base.AddDate(0, 0, 1)), 0, 0),
		NewLeaderboardEntry(leaderboardUser("c", base), 5, 4),
	}

	ranked := RankLeaderboard(entries)

	require.Equal(t, 1, ranked[0].Rank)
	require.Equal(t, 1, ranked[1].Rank)
	require.Equal(t, 3, ranked[2].Rank)
	require.Equal(t, "c", ranked[2].UserID)
}

func TestRankLeaderboardTieBreakFallsBackToUserID(t *testing.T) {
	created := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	entries := []LeaderboardEntry{
		NewLeaderboardEntry(leaderboardUser("zeta", created), 3, 1),
		NewLeaderboardEntry(leaderboardUser("alpha", created), 3, 1),
	}

	ranked := RankLeaderboard(entries)

	require.Equal(t, "alpha", ranked[0].UserID)
	require.Equal(t, "zeta", ranked[1].UserID)
	require.Equal(t, ranked[0].Rank, ranked[1].Rank)
}

func TestRankLeaderboardDoesNotMutateInput(t *testing.T) {
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	entries := []LeaderboardEntry{
		NewLeaderboardEntry(leaderboardUser("b", base), 5, 2),
		NewLeaderboardEntry(leaderboardUser("a", base), 1, 1),
	}

	_ = RankLeaderboard(entries)

	require.Equal(t, "b", entries[0].UserID)
	require.Zero(t, entries[0].Rank)
}
