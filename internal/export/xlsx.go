package export

import (
	"fmt"
	"io"

	"seminar-results-service/internal/domain"

	"github.com/xuri/excelize/v2"
)

const sheet = "Results"

// WriteXLSX renders ranked rows as a spreadsheet: one line per participant
// with the rank band, per-problem points, round subtotals and the total.
func WriteXLSX(w io.Writer, rows []domain.ResultRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeLine(f, 1, header(rows)); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeLine(f, i+2, line(row)); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func header(rows []domain.ResultRow) []interface{} {
	cells := []interface{}{"Rank", "First name", "Last name", "School", "Grade"}
	if len(rows) == 0 {
		return append(cells, "Total")
	}
	multi := len(rows[0].Solutions) > 1
	for r, entries := range rows[0].Solutions {
		for p := range entries {
			cells = append(cells, fmt.Sprintf("%d.%d", r+1, p+1))
		}
		if multi {
			cells = append(cells, fmt.Sprintf("Round %d", r+1))
		}
	}
	return append(cells, "Total")
}

func line(row domain.ResultRow) []interface{} {
	cells := []interface{}{
		rankLabel(row),
		row.Participant.FirstName,
		row.Participant.LastName,
		row.Participant.School.Name,
		row.Participant.Grade,
	}
	multi := len(row.Solutions) > 1
	for r, entries := range row.Solutions {
		for _, entry := range entries {
			cells = append(cells, entry.Points)
		}
		if multi && r < len(row.Subtotal) {
			cells = append(cells, row.Subtotal[r])
		}
	}
	return append(cells, row.Total)
}

// rankLabel prints a band only on the first row of each distinct total.
func rankLabel(row domain.ResultRow) string {
	if !row.RankChanged {
		return ""
	}
	if row.RankStart == row.RankEnd {
		return fmt.Sprintf("%d.", row.RankStart)
	}
	return fmt.Sprintf("%d.-%d.", row.RankStart, row.RankEnd)
}

func writeLine(f *excelize.File, lineNo int, cells []interface{}) error {
	axis, err := excelize.CoordinatesToCellName(1, lineNo)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", lineNo, err)
	}
	return nil
}
