package leaderboard

import (
	"github.com/google/uuid"

	"github.com/sidebet/platform/internal/domain"
)

// Title is a league-wide superlative awarded from member stats.
type Title string

const (
	// TitleKing goes to the member(s) with the most wins.
	TitleKing Title = "king"
	// TitleJester goes to the member(s) with the most losses.
	TitleJester Title = "jester"
	// TitleFool goes to the member(s) with the most negative single loss.
	TitleFool Title = "fool"
	// TitleAddict goes to the member(s) with the most wagers.
	TitleAddict Title = "addict"
	// TitleCoward goes to the member(s) with the fewest wagers.
	TitleCoward Title = "coward"
	// TitleCapitalist goes to the member(s) with the highest PnL.
	TitleCapitalist Title = "capitalist"
)

// ComputeTitles awards every title across the given stats. Ties share the
// title; every member with a stats row is eligible, so a one-member league
// holds all six. An empty input yields no titles.
func ComputeTitles(stats []domain.MemberStats) map[uuid.UUID][]Title {
	titles := make(map[uuid.UUID][]Title)
	if len(stats) == 0 {
		return titles
	}

	award := func(title Title, holders []uuid.UUID) {
		for _, id := range holders {
			titles[id] = append(titles[id], title)
		}
	}

	award(TitleKing, ties(stats, func(s *domain.MemberStats) int64 { return int64(s.TotalWins) }, false))
	award(TitleJester, ties(stats, func(s *domain.MemberStats) int64 { return int64(s.TotalLosses) }, false))
	award(TitleFool, ties(stats, func(s *domain.MemberStats) int64 { return s.GreatestLoss }, true))
	award(TitleAddict, ties(stats, func(s *domain.MemberStats) int64 { return int64(s.TotalWagers) }, false))
	award(TitleCoward, ties(stats, func(s *domain.MemberStats) int64 { return int64(s.TotalWagers) }, true))
	award(TitleCapitalist, ties(stats, func(s *domain.MemberStats) int64 { return s.PnL }, false))

	return titles
}

// ties returns every member sharing the best value of key. preferMin picks
// the smallest value as best (fool's most negative loss, coward's fewest
// wagers).
func ties(stats []domain.MemberStats, key func(*domain.MemberStats) int64, preferMin bool) []uuid.UUID {
	best := key(&stats[0])
	for i := range stats[1:] {
		v := key(&stats[i+1])
		if (preferMin && v < best) || (!preferMin && v > best) {
			best = v
		}
	}

	var holders []uuid.UUID
	for i := range stats {
		if key(&stats[i]) == best {
			holders = append(holders, stats[i].MemberID)
		}
	}
	return holders
}
