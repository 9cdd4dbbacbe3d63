package credentials

import (
	"context"
	"sync"

	"school-roster-service/internal/models"
	"school-roster-service/pkg/logger"
)

// Registrar is the collaborator that persists one portal account per call.
type Registrar interface {
	RegisterIdentity(ctx context.Context, role models.Role, identity models.PortalIdentity, reference string) error
}

// IssuedCredential is the per-record result of a bulk issuance run. Err is
// set when that record's registration failed; the rest of the batch is
// unaffected.
type IssuedCredential struct {
	Reference string                `json:"reference,omitempty"`
	Role      string                `json:"role"`
	Identity  models.PortalIdentity `json:"identity"`
	Err       string                `json:"error,omitempty"`
}

// Issuer registers generated identities with the persistence service.
//
// MaxInFlight bounds concurrent registration requests. The default of 1
// keeps issuance strictly sequential so progress reads row-by-row and a
// failure is attributable to exactly one record; results are slotted by
// index so raising the limit never reorders them.
type Issuer struct {
	registrar   Registrar
	MaxInFlight int
	logger      logger.Logger
}

// NewIssuer creates an issuer with the default in-flight limit of one.
func NewIssuer(registrar Registrar) *Issuer {
	return &Issuer{
		registrar:   registrar,
		MaxInFlight: 1,
		logger:      logger.GetGlobalLogger().WithComponent("credential_issuer"),
	}
}

// Issue generates and registers one identity per generation context.
// A failed registration is recorded against its own slot and the loop
// continues; there is no mid-batch cancellation.
func (i *Issuer) Issue(ctx context.Context, contexts []models.GenerationContext) []IssuedCredential {
	results := make([]IssuedCredential, len(contexts))

	limit := i.MaxInFlight
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)
	progress := logger.NewProgressTracker("credential_issuance", len(contexts), i.logger)

	var wg sync.WaitGroup
	for idx, genCtx := range contexts {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, genCtx models.GenerationContext) {
			defer wg.Done()
			defer func() { <-sem }()

			identity := Generate(genCtx)
			result := IssuedCredential{
				Reference: genCtx.ReferenceName,
				Role:      genCtx.Role.Label(),
				Identity:  identity,
			}

			if err := i.registrar.RegisterIdentity(ctx, genCtx.Role, identity, genCtx.ReferenceName); err != nil {
				result.Err = err.Error()
				i.logger.WithError(err).WithFields(logger.Fields{
					"login_id":  identity.ID,
					"reference": genCtx.ReferenceName,
				}).Warn("Registration failed; continuing with remaining records")
			}

			results[idx] = result
			progress.Increment(result.Err != "")
		}(idx, genCtx)
	}
	wg.Wait()
	progress.Complete()

	return results
}

// ContextsForRecords builds one generation context per validated roster
// record, deriving the joining year from the admission date.
func ContextsForRecords(role models.Role, records []models.ValidatedRecord) []models.GenerationContext {
	contexts := make([]models.GenerationContext, 0, len(records))
	for _, rec := range records {
		contexts = append(contexts, models.GenerationContext{
			Role:          role,
			BatchCode:     rec.BatchCode,
			JoiningYear:   admissionYear(rec.AdmissionDate),
			ReferenceName: rec.Name,
		})
	}
	return contexts
}

// admissionYear extracts the year from an ISO date, 0 when absent.
func admissionYear(iso string) int {
	if len(iso) < 4 {
		return 0
	}
	year := 0
	for _, ch := range iso[:4] {
		if ch < '0' || ch > '9' {
			return 0
		}
		year = year*10 + int(ch-'0')
	}
	return year
}
