// Package parsers turns uploaded roster files into raw rows of text cells.
//
// Two sources are supported: delimited text, handled by a small RFC4180-style
// scanner, and binary workbooks (.xlsx/.xls), delegated to excelize. Both
// produce the same row shape so the rest of the pipeline never knows which
// format the operator uploaded.
package parsers

import (
	"strings"

	"school-roster-service/internal/models"
)

// ParseCSV converts raw CSV text into an ordered sequence of rows.
//
// Quoting follows RFC4180: a doubled quote inside a quoted field emits a
// literal quote, and commas and newlines inside quotes are literal. Unlike
// encoding/csv the scanner is lenient about malformed quoting and always
// emits an unterminated trailing field as the final row.
func ParseCSV(text string) []models.RawRow {
	if text == "" {
		return nil
	}

	var (
		rows    []models.RawRow
		row     []string
		field   strings.Builder
		quoted  bool
		pending bool
	)

	flushField := func() {
		row = append(row, field.String())
		field.Reset()
		pending = false
	}
	flushRow := func() {
		flushField()
		rows = append(rows, row)
		row = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if quoted {
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++
					continue
				}
				quoted = false
				continue
			}
			field.WriteRune(ch)
			pending = true
			continue
		}

		switch ch {
		case '"':
			quoted = true
			pending = true
		case ',':
			flushField()
			pending = true // a trailing comma still implies one more empty field
		case '\n':
			flushRow()
		case '\r':
			// dropped
		default:
			field.WriteRune(ch)
			pending = true
		}
	}

	// A trailing row with no terminating newline is still emitted.
	if pending || field.Len() > 0 || len(row) > 0 {
		flushRow()
	}

	return rows
}

// EncodeCSV renders rows back into RFC4180 text. Any field containing a
// comma, quote or newline is wrapped in quotes with internal quotes doubled.
func EncodeCSV(rows []models.RawRow) string {
	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(EncodeCSVField(cell))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// EncodeCSVField quotes a single field when its content requires it.
func EncodeCSVField(cell string) string {
	if strings.ContainsAny(cell, ",\"\n\r") {
		return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
	}
	return cell
}
