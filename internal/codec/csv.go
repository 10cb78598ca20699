package codec

import (
	"fmt"
	"io"
	"strings"

	"github.com/vbonduro/rbaudit/internal/domain"
)

const utf8BOM = "\ufeff"

// ImportBuildingsCSV reads buildings from a CSV whose first line is a header.
// Header names are matched case-insensitively. Rows without a BuildingName are
// dropped; a Suburb column, when present, is used as the address in place of
// Address.
func (c *Codec) ImportBuildingsCSV(r io.Reader) ([]domain.Building, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	lines := splitLines(strings.TrimPrefix(string(data), utf8BOM))
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: csv has no header line", ErrMalformedInput)
	}

	header := ParseCSVLine(lines[0])
	idx := func(name string) int {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}
	idCol, nameCol, notesCol := idx(ColBuildingID), idx(ColBuildingName), idx(ColNotes)
	addrCol := idx(ColSuburb)
	if addrCol < 0 {
		addrCol = idx(ColAddress)
	}

	var buildings []domain.Building
	for _, line := range lines[1:] {
		fields := ParseCSVLine(line)
		b := domain.Building{
			ID:      field(fields, idCol),
			Name:    field(fields, nameCol),
			Address: field(fields, addrCol),
			Notes:   field(fields, notesCol),
		}
		if b.Name == "" {
			continue
		}
		if b.ID == "" {
			b.ID = c.newID()
		}
		buildings = append(buildings, b)
	}
	return buildings, nil
}

// ParseCSVLine splits one line on commas outside double quotes, then strips a
// wrapping quote pair and collapses doubled quotes in each field. Values are
// not trimmed. Quoted fields spanning lines are not supported.
func ParseCSVLine(line string) []string {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == ',' && !inQuotes:
			fields = append(fields, unquote(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, unquote(cur.String()))
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.ReplaceAll(s, `""`, `"`)
}

// splitLines splits on \n or \r\n and drops blank lines.
func splitLines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

func field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}
