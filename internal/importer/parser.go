package importer

import (
	"encoding/csv"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// RosterRow is one normalized entry of an uploaded roster.
type RosterRow struct {
	Name  string
	Email string
}

// RowError records a rejected roster line.
type RowError struct {
	Line    int
	Message string
}

func (e RowError) String() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

var emailFolder = cases.Fold()

// ParseRoster reads a CSV roster. The first line must be a header containing
// name and email columns, in either order. Rosters exported from campus
// spreadsheets arrive with decomposed accents and mixed-case emails, so names
// are NFC normalized and emails case-folded before use. Bad lines are
// collected, not fatal.
func ParseRoster(data string) ([]RosterRow, []RowError, error) {
	reader := csv.NewReader(strings.NewReader(data))
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, shared.Validation("malformed CSV: " + err.Error())
	}
	if len(records) == 0 {
		return nil, nil, shared.Validation("empty roster")
	}

	nameIdx, emailIdx := -1, -1
	for i, col := range records[0] {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "name", "nombre":
			nameIdx = i
		case "email", "correo":
			emailIdx = i
		}
	}
	if nameIdx < 0 || emailIdx < 0 {
		return nil, nil, shared.Validation("roster header must contain name and email columns")
	}

	seen := make(map[string]struct{})
	var rows []RosterRow
	var rowErrs []RowError
	for i, record := range records[1:] {
		line := i + 2
		if len(record) <= nameIdx || len(record) <= emailIdx {
			rowErrs = append(rowErrs, RowError{Line: line, Message: "missing columns"})
			continue
		}
		name := norm.NFC.String(strings.TrimSpace(record[nameIdx]))
		email := emailFolder.String(strings.TrimSpace(record[emailIdx]))
		if name == "" {
			rowErrs = append(rowErrs, RowError{Line: line, Message: "empty name"})
			continue
		}
		if !strings.Contains(email, "@") {
			rowErrs = append(rowErrs, RowError{Line: line, Message: "invalid email"})
			continue
		}
		if _, dup := seen[email]; dup {
			rowErrs = append(rowErrs, RowError{Line: line, Message: "duplicate email " + email})
			continue
		}
		seen[email] = struct{}{}
		rows = append(rows, RosterRow{Name: name, Email: email})
	}
	return rows, rowErrs, nil
}
