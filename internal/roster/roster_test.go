package roster

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

func TestCSVParser_Parse(t *testing.T) {
	data := []byte("name,corp,runner\nAlice,Jinteki: Restoring Humanity,Hoshiko Shiro\n\nBob,,Zahya\n")

	got, err := NewCSVParser().Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := []Entry{
		{Name: "Alice", CorpIdentity: "Jinteki: Restoring Humanity", RunnerIdentity: "Hoshiko Shiro"},
		{Name: "Bob", RunnerIdentity: "Zahya"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVParser_NoHeaderNameOnly(t *testing.T) {
	got, err := NewCSVParser().Parse([]byte("Alice\nBob\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[1].Name != "Bob" || got[1].CorpIdentity != "" {
		t.Errorf("unexpected entry %+v", got[1])
	}
}

func TestCSVParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"header only", "name,corp,runner\n"},
		{"missing name", "name,corp\n,Weyland\n"},
		{"duplicate", "Alice\nalice\n"},
		{"bad quoting", "\"Alice\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCSVParser().Parse([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func buildXLSX(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			t.Fatal(err)
		}
		cells := make([]interface{}, len(row))
		for i, val := range row {
			cells[i] = val
		}
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestXLSXParser_Parse(t *testing.T) {
	data := buildXLSX(t, [][]string{
		{"Name", "Corp", "Runner"},
		{"Alice", "Azmari EdTech", "Esâ Afontov"},
		{"Bob", "Thule Subsea", ""},
	})

	got, err := NewXLSXParser().Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].CorpIdentity != "Azmari EdTech" {
		t.Errorf("expected Azmari EdTech, got %q", got[0].CorpIdentity)
	}
	if got[1].Name != "Bob" || got[1].RunnerIdentity != "" {
		t.Errorf("unexpected entry %+v", got[1])
	}
}

func TestXLSXParser_NotAWorkbook(t *testing.T) {
	if _, err := NewXLSXParser().Parse([]byte("Alice,Bob")); err == nil {
		t.Error("expected error")
	}
}

func TestParserFor(t *testing.T) {
	p, err := ParserFor("players.CSV")
	if err != nil {
		t.Fatalf("ParserFor(csv) failed: %v", err)
	}
	if _, ok := p.(*CSVParser); !ok {
		t.Errorf("expected *CSVParser, got %T", p)
	}

	p, err = ParserFor("players.xlsx")
	if err != nil {
		t.Fatalf("ParserFor(xlsx) failed: %v", err)
	}
	if _, ok := p.(*XLSXParser); !ok {
		t.Errorf("expected *XLSXParser, got %T", p)
	}

	if _, err := ParserFor("players.pdf"); err == nil {
		t.Error("expected error for unsupported file")
	}
}

func TestParse(t *testing.T) {
	got, err := Parse("roster.csv", []byte("Alice\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if diff := cmp.Diff([]Entry{{Name: "Alice"}}, got); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}
