package credentials

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"

	"school-roster-service/internal/models"
	"school-roster-service/internal/parsers"
)

var idPattern = regexp.MustCompile(`^[A-Z]{3}-\d{2}[A-Z0-9]+-\d{4}$`)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name   string
		ctx    models.GenerationContext
		prefix string
	}{
		{
			name:   "Student with batch",
			ctx:    models.GenerationContext{Role: models.RoleStudent, BatchCode: "2024A", JoiningYear: 2024},
			prefix: "STU-242024A-",
		},
		{
			name:   "Parent batch sanitized",
			ctx:    models.GenerationContext{Role: models.RoleParent, BatchCode: "20-24/b", JoiningYear: 2025},
			prefix: "PAR-252024B-",
		},
		{
			name:   "Teacher empty batch defaults",
			ctx:    models.GenerationContext{Role: models.RoleTeacher, BatchCode: "  ", JoiningYear: 2024},
			prefix: "TCH-24GEN-",
		},
		{
			name:   "Symbol-only batch defaults",
			ctx:    models.GenerationContext{Role: models.RoleStudent, BatchCode: "@#!", JoiningYear: 2031},
			prefix: "STU-31GEN-",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := GenerateID(tt.ctx)
			if !strings.HasPrefix(id, tt.prefix) {
				t.Errorf("GenerateID() = %q, want prefix %q", id, tt.prefix)
			}
			if !idPattern.MatchString(id) {
				t.Errorf("GenerateID() = %q does not match the ID pattern", id)
			}
		})
	}
}

func TestGenerateID_CurrentYearFallback(t *testing.T) {
	id := GenerateID(models.GenerationContext{Role: models.RoleStudent, BatchCode: "X"})
	if !idPattern.MatchString(id) {
		t.Errorf("GenerateID() = %q does not match the ID pattern", id)
	}
}

func TestGeneratePassword_Policy(t *testing.T) {
	for i := 0; i < 1000; i++ {
		pw := GeneratePassword()
		if len(pw) < 8 {
			t.Fatalf("Password %q shorter than 8", pw)
		}
		if len(pw) < minPasswordLength {
			t.Fatalf("Password %q shorter than the construction minimum", pw)
		}
		var hasUpper, hasLower, hasDigit, hasSymbol bool
		for _, ch := range pw {
			switch {
			case strings.ContainsRune(upperAlphabet, ch):
				hasUpper = true
			case strings.ContainsRune(lowerAlphabet, ch):
				hasLower = true
			case strings.ContainsRune(digitAlphabet, ch):
				hasDigit = true
			case strings.ContainsRune(symbolAlphabet, ch):
				hasSymbol = true
			default:
				t.Fatalf("Password %q contains %q outside every alphabet", pw, ch)
			}
		}
		if !hasUpper || !hasLower || !hasDigit || !hasSymbol {
			t.Fatalf("Password %q missing a required character class", pw)
		}
	}
}

type fakeRegistrar struct {
	mu      sync.Mutex
	calls   []string
	failFor map[string]bool
}

func (f *fakeRegistrar) RegisterIdentity(ctx context.Context, role models.Role, identity models.PortalIdentity, reference string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, reference)
	if f.failFor[reference] {
		return fmt.Errorf("server unavailable for %s", reference)
	}
	return nil
}

func TestIssuer_PartialFailureContinues(t *testing.T) {
	registrar := &fakeRegistrar{failFor: map[string]bool{"Ravi Iyer": true}}
	issuer := NewIssuer(registrar)

	contexts := []models.GenerationContext{
		{Role: models.RoleStudent, BatchCode: "2024A", JoiningYear: 2024, ReferenceName: "Asha Rao"},
		{Role: models.RoleStudent, BatchCode: "2024A", JoiningYear: 2024, ReferenceName: "Ravi Iyer"},
		{Role: models.RoleStudent, BatchCode: "2024A", JoiningYear: 2024, ReferenceName: "Meera Nair"},
	}

	results := issuer.Issue(context.Background(), contexts)
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if len(registrar.calls) != 3 {
		t.Fatalf("Expected all records attempted, got %d calls", len(registrar.calls))
	}
	if results[0].Err != "" || results[2].Err != "" {
		t.Errorf("Healthy records should succeed: %+v", results)
	}
	if results[1].Err == "" {
		t.Error("Failed record should carry its error")
	}
	if results[1].Reference != "Ravi Iyer" {
		t.Errorf("Failure attributed to %q, want Ravi Iyer", results[1].Reference)
	}
}

func TestIssuer_SequentialByDefault(t *testing.T) {
	registrar := &fakeRegistrar{}
	issuer := NewIssuer(registrar)
	if issuer.MaxInFlight != 1 {
		t.Fatalf("Default MaxInFlight = %d, want 1", issuer.MaxInFlight)
	}

	contexts := []models.GenerationContext{
		{Role: models.RoleTeacher, ReferenceName: "T1"},
		{Role: models.RoleTeacher, ReferenceName: "T2"},
		{Role: models.RoleTeacher, ReferenceName: "T3"},
	}
	issuer.Issue(context.Background(), contexts)

	want := []string{"T1", "T2", "T3"}
	for i, ref := range want {
		if registrar.calls[i] != ref {
			t.Fatalf("Sequential issuance order broken: %v", registrar.calls)
		}
	}
}

func TestContextsForRecords(t *testing.T) {
	records := []models.ValidatedRecord{{
		Name:          "Asha Rao",
		BatchCode:     "2024A",
		AdmissionDate: "2024-06-05",
	}}

	contexts := ContextsForRecords(models.RoleParent, records)
	if len(contexts) != 1 {
		t.Fatalf("Expected 1 context, got %d", len(contexts))
	}
	c := contexts[0]
	if c.Role != models.RoleParent || c.BatchCode != "2024A" || c.JoiningYear != 2024 || c.ReferenceName != "Asha Rao" {
		t.Errorf("Unexpected context %+v", c)
	}
}

func TestWriteCSV(t *testing.T) {
	creds := []IssuedCredential{
		{
			Reference: "Rao, Asha",
			Role:      "student",
			Identity:  models.PortalIdentity{ID: "STU-242024A-0042", Password: `p"w,1X`},
		},
		{
			Reference: "Ravi Iyer",
			Role:      "student",
			Identity:  models.PortalIdentity{ID: "STU-242024A-0043", Password: "xY7!abcdef"},
			Err:       "server unavailable",
		},
	}

	var b strings.Builder
	if err := WriteCSV(&b, creds); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	rows := parsers.ParseCSV(b.String())
	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "Rao, Asha" {
		t.Errorf("Comma-bearing reference mangled: %q", rows[1][0])
	}
	if rows[1][3] != `p"w,1X` {
		t.Errorf("Quoted password mangled: %q", rows[1][3])
	}
	if rows[2][4] != "failed: server unavailable" {
		t.Errorf("Status = %q", rows[2][4])
	}
}
