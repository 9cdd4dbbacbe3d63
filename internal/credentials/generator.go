// Package credentials produces portal login identities and temporary
// passwords for student, parent and teacher accounts, and drives their bulk
// registration. Generation is pure apart from its random source and performs
// no I/O of its own.
package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"school-roster-service/internal/models"
)

// Character alphabets for password generation. The letter alphabets exclude
// visually ambiguous characters (I/l, O/o) so operators can read credentials
// aloud or print them.
const (
	upperAlphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerAlphabet  = "abcdefghjkmnpqrstuvwxyz"
	digitAlphabet  = "0123456789"
	symbolAlphabet = "!@#$%^&*-_+=?"

	minPasswordLength = 10
)

var combinedAlphabet = upperAlphabet + lowerAlphabet + digitAlphabet + symbolAlphabet

// randInt draws a uniform value in [0, n) from crypto/rand.
func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// never degrade to a predictable credential
		panic(fmt.Sprintf("credentials: random source unavailable: %v", err))
	}
	return int(v.Int64())
}

func randChar(alphabet string) byte {
	return alphabet[randInt(len(alphabet))]
}

// sanitizeBatchCode strips all non-alphanumeric characters and uppercases,
// defaulting to GEN when nothing survives.
func sanitizeBatchCode(code string) string {
	var b strings.Builder
	for _, ch := range strings.ToUpper(code) {
		if unicode.IsUpper(ch) || unicode.IsDigit(ch) {
			b.WriteRune(ch)
		}
	}
	if b.Len() == 0 {
		return "GEN"
	}
	return b.String()
}

// GenerateID builds a login ID of the form
// {role prefix}-{YY}{sanitized batch code}-{NNNN}.
func GenerateID(ctx models.GenerationContext) string {
	year := ctx.JoiningYear
	if year <= 0 {
		year = time.Now().Year()
	}
	return fmt.Sprintf("%s-%02d%s-%04d",
		ctx.Role.Prefix(), year%100, sanitizeBatchCode(ctx.BatchCode), randInt(10000))
}

// passwordPolicy is the authoritative acceptance predicate. The construction
// below guarantees it structurally, but the check stays in charge: a draw
// that fails it is thrown away and retried.
func passwordPolicy(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, ch := range pw {
		switch {
		case strings.ContainsRune(upperAlphabet, ch):
			hasUpper = true
		case strings.ContainsRune(lowerAlphabet, ch):
			hasLower = true
		case strings.ContainsRune(digitAlphabet, ch):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

// GeneratePassword draws one character from each alphabet, pads to the
// minimum length from the combined alphabet, and Fisher-Yates shuffles the
// result. Redrawn until passwordPolicy accepts it.
func GeneratePassword() string {
	for {
		chars := []byte{
			randChar(upperAlphabet),
			randChar(lowerAlphabet),
			randChar(digitAlphabet),
			randChar(symbolAlphabet),
		}
		for len(chars) < minPasswordLength {
			chars = append(chars, randChar(combinedAlphabet))
		}
		for i := len(chars) - 1; i > 0; i-- {
			j := randInt(i + 1)
			chars[i], chars[j] = chars[j], chars[i]
		}

		if pw := string(chars); passwordPolicy(pw) {
			return pw
		}
	}
}

// Generate produces a portal identity for one generation context.
func Generate(ctx models.GenerationContext) models.PortalIdentity {
	return models.PortalIdentity{
		ID:       GenerateID(ctx),
		Password: GeneratePassword(),
	}
}
