package results

import (
	"sort"
	"strconv"

	"seminar-results-service/internal/domain"
	"seminar-results-service/internal/scoring"
)

type solutionKey struct {
	participant domain.ParticipantID
	problem     int64
}

// SolutionIndex holds at most one solution per participant and problem.
type SolutionIndex struct {
	byKey        map[solutionKey]domain.Solution
	participants map[domain.ParticipantID]struct{}
}

// IndexSolutions keeps the most recently uploaded solution for every
// participant/problem pair; equal upload times keep the higher id.
func IndexSolutions(solutions []domain.Solution) SolutionIndex {
	idx := SolutionIndex{
		byKey:        make(map[solutionKey]domain.Solution, len(solutions)),
		participants: make(map[domain.ParticipantID]struct{}),
	}
	for _, sol := range solutions {
		key := solutionKey{participant: sol.ParticipantID, problem: sol.ProblemID}
		if prev, ok := idx.byKey[key]; ok && !newer(sol, prev) {
			continue
		}
		idx.byKey[key] = sol
		idx.participants[sol.ParticipantID] = struct{}{}
	}
	return idx
}

func newer(a, b domain.Solution) bool {
	if !a.UploadedAt.Equal(b.UploadedAt) {
		return a.UploadedAt.After(b.UploadedAt)
	}
	return a.ID > b.ID
}

// Lookup returns the solution of participant p for a problem.
func (idx SolutionIndex) Lookup(p domain.ParticipantID, problemID int64) (domain.Solution, bool) {
	sol, ok := idx.byKey[solutionKey{participant: p, problem: problemID}]
	return sol, ok
}

// Has reports whether participant p has any indexed solution.
func (idx SolutionIndex) Has(p domain.ParticipantID) bool {
	_, ok := idx.participants[p]
	return ok
}

// Builder produces result rows for rounds and periods.
type Builder struct {
	strategies *scoring.Registry
}

func NewBuilder(strategies *scoring.Registry) *Builder {
	if strategies == nil {
		strategies = scoring.NewRegistry()
	}
	return &Builder{strategies: strategies}
}

// RoundRow builds the unranked row of one participant for a single round.
func (b *Builder) RoundRow(round domain.Round, p domain.Participant, idx SolutionIndex) domain.ResultRow {
	entries, subtotal := b.roundPart(round, p, idx)
	return domain.ResultRow{
		RankChanged: true,
		Participant: p.Ref(),
		Subtotal:    []int{subtotal},
		Total:       subtotal,
		Solutions:   [][]domain.ProblemEntry{entries},
	}
}

// PeriodRow builds the unranked row of one participant over every round of a period.
func (b *Builder) PeriodRow(period domain.Period, p domain.Participant, idx SolutionIndex) domain.ResultRow {
	rounds := OrderedRounds(period)
	row := domain.ResultRow{
		RankChanged: true,
		Participant: p.Ref(),
		Subtotal:    make([]int, 0, len(rounds)),
		Solutions:   make([][]domain.ProblemEntry, 0, len(rounds)),
	}
	for _, round := range rounds {
		entries, subtotal := b.roundPart(round, p, idx)
		row.Solutions = append(row.Solutions, entries)
		row.Subtotal = append(row.Subtotal, subtotal)
	}
	row.Total = b.strategies.Period(period.ScoringMethod)(row.Subtotal)
	return row
}

// RoundRows builds rows for every participant with at least one solution in
// the round, ordered by participant id.
func (b *Builder) RoundRows(round domain.Round, participants []domain.Participant, solutions []domain.Solution) []domain.ResultRow {
	idx := IndexSolutions(solutions)
	sorted := sortedParticipants(participants)
	rows := make([]domain.ResultRow, 0, len(sorted))
	for _, p := range sorted {
		if !idx.Has(p.ID) {
			continue
		}
		rows = append(rows, b.RoundRow(round, p, idx))
	}
	return rows
}

func (b *Builder) roundPart(round domain.Round, p domain.Participant, idx SolutionIndex) ([]domain.ProblemEntry, int) {
	problems := OrderedProblems(round)
	entries := make([]domain.ProblemEntry, 0, len(problems))
	scores := make([]*int, 0, len(problems))
	for _, problem := range problems {
		sol, ok := idx.Lookup(p.ID, problem.ID)
		if !ok {
			entries = append(entries, absentEntry(problem))
			scores = append(scores, nil)
			continue
		}
		ref := sol.ID
		entry := domain.ProblemEntry{
			Points:      domain.PointsUngraded,
			SolutionRef: &ref,
			ProblemRef:  problem.ID,
		}
		if sol.Score != nil {
			entry.Points = strconv.Itoa(*sol.Score)
		}
		entries = append(entries, entry)
		scores = append(scores, sol.Score)
	}
	subtotal := b.strategies.Series(round.ScoringMethod)(scores, p.ScoringContext())
	return entries, subtotal
}

func absentEntry(problem domain.Problem) domain.ProblemEntry {
	return domain.ProblemEntry{Points: domain.PointsAbsent, ProblemRef: problem.ID}
}

// AbsentEntries is the placeholder list for a participant without solutions in a round.
func AbsentEntries(round domain.Round) []domain.ProblemEntry {
	problems := OrderedProblems(round)
	entries := make([]domain.ProblemEntry, len(problems))
	for i, problem := range problems {
		entries[i] = absentEntry(problem)
	}
	return entries
}

// OrderedProblems returns the round's problems by their order.
func OrderedProblems(round domain.Round) []domain.Problem {
	problems := append([]domain.Problem(nil), round.Problems...)
	sort.SliceStable(problems, func(i, j int) bool {
		return problems[i].Order < problems[j].Order
	})
	return problems
}

// OrderedRounds returns the period's rounds by their order.
func OrderedRounds(period domain.Period) []domain.Round {
	rounds := append([]domain.Round(nil), period.Rounds...)
	sort.SliceStable(rounds, func(i, j int) bool {
		return rounds[i].Order < rounds[j].Order
	})
	return rounds
}

func sortedParticipants(participants []domain.Participant) []domain.Participant {
	sorted := append([]domain.Participant(nil), participants...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
