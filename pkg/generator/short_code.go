package generator

import (
	"crypto/rand"
	"math/big"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/ammu0113/url-shortener/pkg/validator"
)

const (
	urlSafeChars       = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_-"
	DefaultCodeLength  = 8
	DefaultMaxAttempts = 5
	minCodeLength      = 8
)

type Generator struct {
	length      int
	maxAttempts int
}

func New(length, maxAttempts int) *Generator {
	if length < minCodeLength {
		length = minCodeLength
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{length: length, maxAttempts: maxAttempts}
}

// MaxAttempts bounds how many generated candidates a caller may try before giving up.
func (g *Generator) MaxAttempts() int {
	return g.maxAttempts
}

// Candidate returns the validated custom alias when one is given, otherwise a fresh random code.
// Uniqueness is not checked here; the store rejects duplicates at write time.
func (g *Generator) Candidate(customAlias string) (string, error) {
	if customAlias != "" {
		if errs := validator.ValidateAlias(customAlias); len(errs) > 0 {
			return "", domain.NewValidationError("Invalid custom alias", errs...)
		}
		return customAlias, nil
	}
	return GenerateShortCode(g.length)
}

func GenerateShortCode(length int) (string, error) {
	b := make([]byte, length)
	alphabetSize := big.NewInt(int64(len(urlSafeChars)))
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetSize)

		if err != nil {
			return "", err
		}

		b[i] = urlSafeChars[n.Int64()]
	}

	return string(b), nil
}
