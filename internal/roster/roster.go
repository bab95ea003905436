// Package roster reads registration lists from CSV and XLSX files.
package roster

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Entry is one registration row.
type Entry struct {
	Name           string `json:"name"`
	CorpIdentity   string `json:"corp_identity"`
	RunnerIdentity string `json:"runner_identity"`
}

// Parser turns file contents into roster entries.
type Parser interface {
	Parse(data []byte) ([]Entry, error)
}

// ParserFor picks a parser by file extension.
func ParserFor(filename string) (Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv", ".txt":
		return NewCSVParser(), nil
	case ".xlsx":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("unsupported roster file type: %q", ext)
	}
}

// Parse reads data with the parser matching filename.
func Parse(filename string, data []byte) ([]Entry, error) {
	p, err := ParserFor(filename)
	if err != nil {
		return nil, err
	}
	return p.Parse(data)
}

// entries converts raw rows to entries. Blank rows and a leading header row
// whose first cell is "name" are skipped.
func entries(rows [][]string) ([]Entry, error) {
	out := make([]Entry, 0, len(rows))
	seen := make(map[string]int)
	for i, row := range rows {
		if blank(row) {
			continue
		}
		if len(out) == 0 && isHeader(row) {
			continue
		}
		e := Entry{
			Name:           cell(row, 0),
			CorpIdentity:   cell(row, 1),
			RunnerIdentity: cell(row, 2),
		}
		if e.Name == "" {
			return nil, fmt.Errorf("row %d: missing name", i+1)
		}
		key := strings.ToLower(e.Name)
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("row %d: duplicate name %q (first on row %d)", i+1, e.Name, prev)
		}
		seen[key] = i + 1
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("roster is empty")
	}
	return out, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func isHeader(row []string) bool {
	first := strings.ToLower(cell(row, 0))
	return first == "name" || first == "player"
}
