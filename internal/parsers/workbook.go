package parsers

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"school-roster-service/internal/models"
	"school-roster-service/pkg/errors"
	"school-roster-service/pkg/logger"
)

// ReadWorkbook decodes a binary .xlsx/.xls buffer and returns the rows of its
// first sheet. Blank cells come back as empty strings, matching the CSV
// scanner's row shape.
func ReadWorkbook(data []byte, name string) ([]models.RawRow, error) {
	log := logger.GetGlobalLogger().WithComponent("workbook_reader")

	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		log.WithError(err).WithField("file", name).Error("Failed to decode workbook")
		return nil, errors.ParseError(errors.CodeWorkbookBroken, name, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ParseError(errors.CodeEmptyFile, name, nil)
	}

	rawRows, err := file.GetRows(sheets[0])
	if err != nil {
		log.WithError(err).WithFields(logger.Fields{
			"file":  name,
			"sheet": sheets[0],
		}).Error("Failed to read sheet rows")
		return nil, errors.ParseError(errors.CodeWorkbookBroken, name, err)
	}

	// GetRows trims trailing blank cells per row; pad to a rectangular shape
	// so positional mapping sees consistent column counts.
	width := 0
	for _, row := range rawRows {
		if len(row) > width {
			width = len(row)
		}
	}

	rows := make([]models.RawRow, 0, len(rawRows))
	for _, row := range rawRows {
		cells := make([]string, width)
		copy(cells, row)
		rows = append(rows, cells)
	}

	log.WithFields(logger.Fields{
		"file":  name,
		"sheet": sheets[0],
		"rows":  len(rows),
	}).Debug("Decoded workbook")

	return rows, nil
}
