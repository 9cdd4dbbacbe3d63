package credentials

import (
	"fmt"
	"io"

	"school-roster-service/internal/parsers"
)

// WriteCSV exports issued credentials as RFC4180 CSV: any field containing a
// comma, quote or newline is quote-wrapped with internal quotes doubled.
func WriteCSV(w io.Writer, creds []IssuedCredential) error {
	if _, err := io.WriteString(w, "reference,role,loginId,password,status\n"); err != nil {
		return fmt.Errorf("writing credentials header: %w", err)
	}

	for _, cred := range creds {
		status := "issued"
		if cred.Err != "" {
			status = "failed: " + cred.Err
		}
		row := []string{cred.Reference, cred.Role, cred.Identity.ID, cred.Identity.Password, status}
		for i, cell := range row {
			if i > 0 {
				if _, err := io.WriteString(w, ","); err != nil {
					return fmt.Errorf("writing credentials row: %w", err)
				}
			}
			if _, err := io.WriteString(w, parsers.EncodeCSVField(cell)); err != nil {
				return fmt.Errorf("writing credentials row: %w", err)
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("writing credentials row: %w", err)
		}
	}
	return nil
}
