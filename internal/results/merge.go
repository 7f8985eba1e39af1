package results

import (
	"fmt"

	"seminar-results-service/internal/domain"
)

// Merger accumulates per-round rows into period rows, one round at a time.
// Both the accumulated rows and each incoming batch must be sorted by
// participant id; Add rejects anything else with ErrInconsistentMergeInput.
type Merger struct {
	rounds []domain.Round
	rows   []domain.ResultRow
}

// Add merges the rows of the next round.
func (m *Merger) Add(round domain.Round, incoming []domain.ResultRow) error {
	merged, err := Merge(m.rows, m.rounds, incoming, round)
	if err != nil {
		return err
	}
	m.rows = merged
	m.rounds = append(m.rounds, round)
	return nil
}

// Rows returns the merged rows, still ordered by participant id.
func (m *Merger) Rows() []domain.ResultRow {
	return m.rows
}

// Merge joins rows accumulated over the prior rounds with the rows of round next.
// Participants missing on one side get absent placeholders and zero subtotals
// for the rounds they have no row in.
func Merge(current []domain.ResultRow, prior []domain.Round, incoming []domain.ResultRow, next domain.Round) ([]domain.ResultRow, error) {
	if err := checkSorted("current", current); err != nil {
		return nil, err
	}
	if err := checkSorted("incoming", incoming); err != nil {
		return nil, err
	}
	for _, row := range incoming {
		if len(row.Subtotal) != 1 || len(row.Solutions) != 1 {
			return nil, fmt.Errorf("%w: incoming row of participant %d spans %d rounds",
				domain.ErrInconsistentMergeInput, row.Participant.ID, len(row.Subtotal))
		}
	}

	merged := make([]domain.ResultRow, 0, len(current)+len(incoming))
	i, j := 0, 0
	for i < len(current) || j < len(incoming) {
		switch {
		case j == len(incoming) || (i < len(current) && current[i].Participant.ID < incoming[j].Participant.ID):
			merged = append(merged, join(current[i], padIncoming(next)))
			i++
		case i == len(current) || current[i].Participant.ID > incoming[j].Participant.ID:
			merged = append(merged, join(padCurrent(incoming[j].Participant, prior), incoming[j]))
			j++
		default:
			merged = append(merged, join(current[i], incoming[j]))
			i++
			j++
		}
	}
	return merged, nil
}

func checkSorted(side string, rows []domain.ResultRow) error {
	for k := 1; k < len(rows); k++ {
		if rows[k-1].Participant.ID >= rows[k].Participant.ID {
			return fmt.Errorf("%w: %s rows at %d and %d", domain.ErrInconsistentMergeInput, side, k-1, k)
		}
	}
	return nil
}

// padCurrent synthesizes the accumulated part of a participant first seen now.
func padCurrent(ref domain.ParticipantRef, prior []domain.Round) domain.ResultRow {
	row := domain.ResultRow{
		Participant: ref,
		Subtotal:    make([]int, len(prior)),
		Solutions:   make([][]domain.ProblemEntry, len(prior)),
	}
	for k, round := range prior {
		row.Solutions[k] = AbsentEntries(round)
	}
	return row
}

// padIncoming synthesizes the next-round part of a participant who skipped it.
func padIncoming(next domain.Round) domain.ResultRow {
	return domain.ResultRow{
		Subtotal:  []int{0},
		Solutions: [][]domain.ProblemEntry{AbsentEntries(next)},
	}
}

func join(acc, add domain.ResultRow) domain.ResultRow {
	row := domain.ResultRow{
		RankChanged: true,
		Participant: acc.Participant,
		Subtotal:    make([]int, 0, len(acc.Subtotal)+len(add.Subtotal)),
		Solutions:   make([][]domain.ProblemEntry, 0, len(acc.Solutions)+len(add.Solutions)),
	}
	row.Subtotal = append(append(row.Subtotal, acc.Subtotal...), add.Subtotal...)
	row.Solutions = append(append(row.Solutions, acc.Solutions...), add.Solutions...)
	for _, s := range row.Subtotal {
		row.Total += s
	}
	return row
}
