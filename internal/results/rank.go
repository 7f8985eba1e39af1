package results

import (
	"sort"

	"seminar-results-service/internal/domain"
)

// Rank sorts rows by total descending and assigns rank bands. Rows sharing a
// total share RankStart (1 + rows strictly better) and RankEnd (rows at least
// as good). RankChanged marks the first row of every distinct total.
// The sort is stable: equal totals keep their input order. The result is
// never nil so an empty ranking serializes as [].
func Rank(rows []domain.ResultRow) []domain.ResultRow {
	ranked := make([]domain.ResultRow, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})

	var last *int
	current := 1
	for pos := range ranked {
		total := ranked[pos].Total
		if last == nil || *last != total {
			current = pos + 1
			last = &total
			ranked[pos].RankChanged = true
		} else {
			ranked[pos].RankChanged = false
		}
		ranked[pos].RankStart = current
	}

	last = nil
	current = len(ranked)
	for pos := len(ranked) - 1; pos >= 0; pos-- {
		total := ranked[pos].Total
		if last == nil || *last != total {
			current = pos + 1
			last = &total
		}
		ranked[pos].RankEnd = current
	}
	return ranked
}
