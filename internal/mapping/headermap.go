package mapping

import (
	"school-roster-service/internal/models"
	"school-roster-service/pkg/logger"
)

// DefaultColumnOrder is the canonical column layout assumed for files whose
// header row is missing or unrecognizable. Required fields come first so a
// bare headerless export still maps completely.
var DefaultColumnOrder = []string{
	models.FieldName,
	models.FieldMobile,
	models.FieldGender,
	models.FieldBatchCode,
	models.FieldAdmissionDate,
	models.FieldRoll,
	models.FieldSection,
	models.FieldCourse,
	models.FieldDOB,
	models.FieldEmail,
	models.FieldAddress,
	models.FieldGuardianName,
	models.FieldGuardianPhone,
	models.FieldGuardianEmail,
}

// BuildHeaderMap maps each recognized header cell to its column index. On
// duplicate headers the right-most column wins; each collision is returned as
// a warning and logged rather than swallowed.
func BuildHeaderMap(row models.RawRow) (models.HeaderMap, []string) {
	log := logger.GetGlobalLogger().WithComponent("header_mapper")

	hm := make(models.HeaderMap)
	var duplicates []string
	for i, cell := range row {
		field, ok := LookupField(cell)
		if !ok {
			continue
		}
		if _, seen := hm[field]; seen {
			duplicates = append(duplicates, cell)
			log.WithFields(logger.Fields{
				"header": cell,
				"field":  field,
				"column": i,
			}).Warn("Duplicate header column; last column wins")
		}
		hm[field] = i
	}
	return hm, duplicates
}

// PositionalHeaderMap maps fields by the default column order.
func PositionalHeaderMap() models.HeaderMap {
	hm := make(models.HeaderMap, len(DefaultColumnOrder))
	for i, field := range DefaultColumnOrder {
		hm[field] = i
	}
	return hm
}

// HasRequiredField reports whether the map recognized at least one of the
// required roster fields.
func HasRequiredField(hm models.HeaderMap) bool {
	for _, field := range models.RequiredFields {
		if _, ok := hm[field]; ok {
			return true
		}
	}
	return false
}

// IsHeaderRow judges whether a row is a header row: at least 30% (minimum 2)
// of its non-empty cells must match the alias dictionary or the heuristic
// vocabulary. Used to decide whether row 0 of an ambiguous file is data.
func IsHeaderRow(row models.RawRow) bool {
	nonEmpty := 0
	matched := 0
	for _, cell := range row {
		if Normalize(cell) == "" {
			continue
		}
		nonEmpty++
		if _, ok := LookupField(cell); ok {
			matched++
		}
	}
	if nonEmpty == 0 {
		return false
	}

	threshold := (nonEmpty*3 + 9) / 10 // ceil(30%)
	if threshold < 2 {
		threshold = 2
	}
	return matched >= threshold
}
