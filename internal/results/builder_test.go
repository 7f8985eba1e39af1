package results

import (
	"testing"
	"time"

	"seminar-results-service/internal/domain"
	"seminar-results-service/internal/scoring"

	"github.com/google/go-cmp/cmp"
)

func TestRoundRowWithoutSolutions(t *testing.T) {
	b := NewBuilder(scoring.NewRegistry())
	r := round(1, 1, 3, "")
	alice := participant(1, "Alice", "Adams", "S1")

	row := b.RoundRow(r, alice, IndexSolutions(nil))

	want := domain.ResultRow{
		RankChanged: true,
		Participant: alice.Ref(),
		Subtotal:    []int{0},
		Total:       0,
		Solutions:   [][]domain.ProblemEntry{absent(11, 12, 13)},
	}
	if diff := cmp.Diff(want, row); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundRowDisplayEntries(t *testing.T) {
	b := NewBuilder(scoring.NewRegistry())
	r := round(1, 1, 4, scoring.SeriesSimpleSum)
	// problems listed out of order must still come out by order
	r.Problems[0], r.Problems[3] = r.Problems[3], r.Problems[0]
	alice := participant(1, "Alice", "Adams", "S1")

	idx := IndexSolutions([]domain.Solution{
		solution(100, 1, 11, score(9)),
		solution(101, 1, 12, nil),
		solution(102, 1, 13, score(5)),
		solution(103, 1, 14, score(0)),
	})
	row := b.RoundRow(r, alice, idx)

	want := [][]domain.ProblemEntry{{
		{Points: "9", SolutionRef: ref(100), ProblemRef: 11},
		{Points: "?", SolutionRef: ref(101), ProblemRef: 12},
		{Points: "5", SolutionRef: ref(102), ProblemRef: 13},
		{Points: "0", SolutionRef: ref(103), ProblemRef: 14},
	}}
	if diff := cmp.Diff(want, row.Solutions); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if row.Total != 14 || len(row.Subtotal) != 1 || row.Subtotal[0] != 14 {
		t.Fatalf("expected total 14, got subtotal=%v total=%d", row.Subtotal, row.Total)
	}
}

func TestIndexSolutionsLatestWins(t *testing.T) {
	old := solution(1, 1, 11, score(2))
	latest := solution(2, 1, 11, score(7))
	latest.UploadedAt = old.UploadedAt.Add(time.Minute)

	idx := IndexSolutions([]domain.Solution{latest, old})
	got, ok := idx.Lookup(1, 11)
	if !ok || got.ID != 2 {
		t.Fatalf("expected latest solution 2, got %+v (ok=%v)", got, ok)
	}

	sameTime := solution(3, 1, 11, score(1))
	sameTime.UploadedAt = latest.UploadedAt
	idx = IndexSolutions([]domain.Solution{sameTime, latest})
	if got, _ := idx.Lookup(1, 11); got.ID != 3 {
		t.Fatalf("expected higher id to win a tie, got %d", got.ID)
	}
}

func TestRoundRowUsesRoundStrategy(t *testing.T) {
	b := NewBuilder(scoring.NewRegistry())
	r := round(1, 1, 4, "series_STROM_4problems_sum")
	p := participant(1, "Alice", "Adams", "S1")
	p.Grade = &domain.Grade{Tag: "G3", YearsUntilGraduation: 3}

	idx := IndexSolutions([]domain.Solution{
		solution(1, 1, 11, score(3)),
		solution(2, 1, 12, score(9)),
		solution(3, 1, 13, score(1)),
		solution(4, 1, 14, score(5)),
	})
	row := b.RoundRow(r, p, idx)
	if row.Total != 27 {
		t.Fatalf("expected weighted total 27, got %d", row.Total)
	}
	if row.Participant.Grade != "G3" {
		t.Fatalf("expected grade tag in participant ref, got %q", row.Participant.Grade)
	}
}

func TestPeriodRowTotalEqualsSubtotals(t *testing.T) {
	b := NewBuilder(scoring.NewRegistry())
	period := domain.Period{ID: 1, Rounds: []domain.Round{round(2, 2, 2, ""), round(1, 1, 3, "")}}
	alice := participant(1, "Alice", "Adams", "S1")

	idx := IndexSolutions([]domain.Solution{
		solution(1, 1, 11, score(4)),
		solution(2, 1, 13, score(6)),
		solution(3, 1, 22, score(3)),
	})
	row := b.PeriodRow(period, alice, idx)

	if diff := cmp.Diff([]int{10, 3}, row.Subtotal); diff != "" {
		t.Fatalf("subtotal mismatch (-want +got):\n%s", diff)
	}
	if row.Total != 13 {
		t.Fatalf("expected total 13, got %d", row.Total)
	}
	if len(row.Solutions) != 2 || len(row.Solutions[0]) != 3 || len(row.Solutions[1]) != 2 {
		t.Fatalf("expected 3+2 entries in round order, got %+v", row.Solutions)
	}
}

func TestPeriodRowWithoutSolutions(t *testing.T) {
	b := NewBuilder(nil)
	period := domain.Period{ID: 1, Rounds: []domain.Round{round(1, 1, 2, ""), round(2, 2, 1, "")}}

	row := b.PeriodRow(period, participant(5, "Eve", "Evans", "S2"), IndexSolutions(nil))

	want := [][]domain.ProblemEntry{absent(11, 12), absent(21)}
	if diff := cmp.Diff(want, row.Solutions); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if row.Total != 0 || len(row.Subtotal) != 2 {
		t.Fatalf("expected zero total over two rounds, got %v / %d", row.Subtotal, row.Total)
	}
}

func TestRoundRowsOnlyParticipantsWithSolutions(t *testing.T) {
	b := NewBuilder(nil)
	r := round(1, 1, 2, "")
	people := []domain.Participant{
		participant(3, "Cyril", "Cox", "S1"),
		participant(1, "Alice", "Adams", "S1"),
		participant(2, "Bob", "Brown", "S2"),
	}
	rows := b.RoundRows(r, people, []domain.Solution{
		solution(1, 3, 11, score(1)),
		solution(2, 1, 12, nil),
	})

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Participant.ID != 1 || rows[1].Participant.ID != 3 {
		t.Fatalf("expected rows ordered by participant id, got %d, %d", rows[0].Participant.ID, rows[1].Participant.ID)
	}
}
