package results

import (
	"time"

	"seminar-results-service/internal/domain"
)

var deadline = time.Date(2024, 11, 1, 23, 59, 0, 0, time.UTC)

func score(v int) *int { return &v }

func ref(v int64) *int64 { return &v }

// round builds a round whose problem ids are roundID*10 + order.
func round(id int64, order, problems int, method string) domain.Round {
	r := domain.Round{ID: id, PeriodID: 1, Order: order, Deadline: deadline, ScoringMethod: method}
	for o := 1; o <= problems; o++ {
		r.Problems = append(r.Problems, domain.Problem{ID: id*10 + int64(o), RoundID: id, Order: o})
	}
	return r
}

func participant(id domain.ParticipantID, first, last, school string) domain.Participant {
	return domain.Participant{
		ID:        id,
		FirstName: first,
		LastName:  last,
		School:    domain.School{Code: school, Name: "School " + school},
	}
}

func solution(id int64, p domain.ParticipantID, problem int64, points *int) domain.Solution {
	return domain.Solution{
		ID:            id,
		ParticipantID: p,
		ProblemID:     problem,
		Score:         points,
		UploadedAt:    deadline.Add(-time.Hour),
	}
}

func absent(problems ...int64) []domain.ProblemEntry {
	entries := make([]domain.ProblemEntry, len(problems))
	for i, id := range problems {
		entries[i] = domain.ProblemEntry{Points: domain.PointsAbsent, ProblemRef: id}
	}
	return entries
}

func rowWithTotal(id domain.ParticipantID, total int) domain.ResultRow {
	return domain.ResultRow{
		Participant: domain.ParticipantRef{ID: id},
		Subtotal:    []int{total},
		Total:       total,
		Solutions:   [][]domain.ProblemEntry{nil},
	}
}
