package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const standingsSheet = "Standings"

var (
	standingsHeader = []interface{}{"Rank", "Name", "Corp", "Runner", "Points", "SoS", "ESoS", "Side Balance"}
	roundHeader     = []interface{}{"Table", "Corp", "Corp Score", "Runner", "Runner Score"}
)

// XLSX renders the document as a workbook with a Standings sheet followed by
// one sheet per round.
func XLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), standingsSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(standingsSheet, "A1", &standingsHeader); err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(doc.Players))
	for i, p := range doc.Players {
		names[p.ID] = p.Name
		row := []interface{}{p.Rank, p.Name, p.CorpIdentity, p.RunnerIdentity, p.MatchPoints,
			p.StrengthOfSchedule, p.ExtendedStrengthOfSchedule, p.SideBalance}
		if err := setRow(f, standingsSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	for r, tables := range doc.Rounds {
		sheet := fmt.Sprintf("Round %d", r+1)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, "A1", &roundHeader); err != nil {
			return nil, err
		}
		for i, tbl := range tables {
			runner := "Bye"
			if tbl.Runner.ID != nil {
				runner = names[*tbl.Runner.ID]
			}
			row := []interface{}{tbl.Table, seatName(names, tbl.Corp), score(tbl.Corp.Score), runner, score(tbl.Runner.Score)}
			if err := setRow(f, sheet, i+2, row); err != nil {
				return nil, err
			}
		}
	}

	f.SetActiveSheet(0)
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, n int, row []interface{}) error {
	axis, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, axis, &row)
}

func seatName(names map[int64]string, s Seat) string {
	if s.ID == nil {
		return ""
	}
	return names[*s.ID]
}

func score(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
