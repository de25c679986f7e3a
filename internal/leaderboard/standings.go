package leaderboard

import (
	"github.com/google/uuid"

	"github.com/sidebet/platform/internal/domain"
)

// BuildStandings assembles leaderboard rows from members already ordered
// by balance. Members tied on balance share a rank (competition ranking:
// 1, 1, 3).
func BuildStandings(members []domain.Member, stats []domain.MemberStats) []domain.LeaderboardRow {
	statsByID := make(map[uuid.UUID]*domain.MemberStats, len(stats))
	for i := range stats {
		statsByID[stats[i].MemberID] = &stats[i]
	}

	titles := ComputeTitles(stats)

	rows := make([]domain.LeaderboardRow, 0, len(members))
	rank := 0
	var prevBalance int64
	for i, m := range members {
		if i == 0 || m.Balance != prevBalance {
			rank = i + 1
		}
		prevBalance = m.Balance

		row := domain.LeaderboardRow{
			Rank:        rank,
			MemberID:    m.ID,
			DisplayName: m.DisplayName,
			Balance:     m.Balance,
			Stats:       statsByID[m.ID],
		}
		for _, t := range titles[m.ID] {
			row.Titles = append(row.Titles, string(t))
		}
		rows = append(rows, row)
	}
	return rows
}
