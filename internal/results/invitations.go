package results

import (
	"math"
	"sort"

	"seminar-results-service/internal/domain"
)

// Invitations takes the first participants rows of a ranked list as
// participants and the following substitutes rows as substitutes.
func Invitations(ranked []domain.ResultRow, participants, substitutes int) []domain.Invitation {
	participants = max(participants, 0)
	substitutes = max(substitutes, 0)

	limit := participants + substitutes
	if limit < participants {
		limit = math.MaxInt
	}

	invited := make([]domain.Invitation, 0, min(len(ranked), limit))
	for i, row := range ranked {
		if i >= limit {
			break
		}
		invited = append(invited, domain.Invitation{
			FirstName:     row.Participant.FirstName,
			LastName:      row.Participant.LastName,
			School:        row.Participant.School,
			IsParticipant: i < participants,
		})
	}
	return invited
}

// SortByName orders invitations by last name, then first name.
func SortByName(invited []domain.Invitation) {
	sort.SliceStable(invited, func(i, j int) bool {
		if invited[i].LastName != invited[j].LastName {
			return invited[i].LastName < invited[j].LastName
		}
		return invited[i].FirstName < invited[j].FirstName
	})
}

// GroupBySchool groups invitations by school code, keeping the incoming
// order inside every group.
func GroupBySchool(invited []domain.Invitation) []domain.SchoolGroup {
	sorted := append([]domain.Invitation(nil), invited...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].School.Code < sorted[j].School.Code
	})

	var groups []domain.SchoolGroup
	for _, inv := range sorted {
		if len(groups) == 0 || groups[len(groups)-1].School != inv.School {
			groups = append(groups, domain.SchoolGroup{School: inv.School})
		}
		last := &groups[len(groups)-1]
		last.Participants = append(last.Participants, inv)
	}
	return groups
}
