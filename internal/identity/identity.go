// Package identity builds the human readable codes given to doctors,
// receptionists and patients, e.g. "JD48213" for "John Doe".
package identity

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/harentsoaR/clinic-api/internal/apperr"
)

const (
	DefaultMaxAttempts = 50

	minDigits = 10000
	maxDigits = 99999
)

// ExistsFunc reports whether code is already taken in the target table.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

type Generator struct {
	MaxAttempts int
	// Intn returns a value in [0, n). Defaults to math/rand/v2.
	Intn func(n int) int
}

func NewGenerator(maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{MaxAttempts: maxAttempts, Intn: rand.IntN}
}

// Initials upper-cases the first letter of every whitespace separated token.
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Candidate draws one code for name without checking uniqueness.
func (g *Generator) Candidate(name string) string {
	intn := g.Intn
	if intn == nil {
		intn = rand.IntN
	}
	return fmt.Sprintf("%s%d", Initials(name), minDigits+intn(maxDigits-minDigits+1))
}

// Generate draws codes until exists reports a free one. It gives up with
// GenerationExhausted after MaxAttempts collisions.
func (g *Generator) Generate(ctx context.Context, name string, exists ExistsFunc) (string, error) {
	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code := g.Candidate(name)
		taken, err := exists(ctx, code)
		if err != nil {
			return "", apperr.Internal("Failed to check identifier uniqueness", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", apperr.New(apperr.KindGenerationExhausted, "Could not generate a unique identifier after %d attempts", attempts)
}
