package export

import (
	"bytes"
	"testing"

	"seminar-results-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	rows := []domain.ResultRow{
		{
			RankStart: 1, RankEnd: 2, RankChanged: true,
			Participant: domain.ParticipantRef{ID: 1, FirstName: "Ada", LastName: "Zeman", School: domain.School{Code: "A", Name: "Gymnazium A"}, Grade: "3"},
			Subtotal:    []int{5, 2},
			Total:       7,
			Solutions: [][]domain.ProblemEntry{
				{{Points: "5", ProblemRef: 111}, {Points: domain.PointsAbsent, ProblemRef: 112}},
				{{Points: "2", ProblemRef: 121}},
			},
		},
		{
			RankStart: 1, RankEnd: 2,
			Participant: domain.ParticipantRef{ID: 2, FirstName: "Bela", LastName: "Young", School: domain.School{Code: "B", Name: "Gymnazium B"}},
			Subtotal:    []int{3, 4},
			Total:       7,
			Solutions: [][]domain.ProblemEntry{
				{{Points: "3", ProblemRef: 111}, {Points: domain.PointsUngraded, ProblemRef: 112}},
				{{Points: "4", ProblemRef: 121}},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rows))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []string{"Rank", "First name", "Last name", "School", "Grade", "1.1", "1.2", "Round 1", "2.1", "Round 2", "Total"}, got[0])
	assert.Equal(t, []string{"1.-2.", "Ada", "Zeman", "Gymnazium A", "3", "5", "-", "5", "2", "2", "7"}, got[1])
	assert.Equal(t, "", got[2][0])
	assert.Equal(t, "?", got[2][6])
}

func TestWriteXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Total", got[0][5])
}
