package links

import (
	"crypto/rand"
	"regexp"
)

const base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// reservedCodes are slugs that collide with application routes and can never
// be used as a short code.
var reservedCodes = map[string]struct{}{
	"login":       {},
	"onboarding":  {},
	"api":         {},
	"dashboard":   {},
	"settings":    {},
	"health":      {},
	"metrics":     {},
	"favicon.ico": {},
	"robots.txt":  {},
	"sitemap.xml": {},
}

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9-_]{3,20}$`)

func IsReservedCode(code string) bool {
	_, ok := reservedCodes[code]
	return ok
}

type CryptoCodeGenerator struct{}

func NewCryptoCodeGenerator() *CryptoCodeGenerator { return &CryptoCodeGenerator{} }

func (g *CryptoCodeGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		length = 6
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	out := make([]byte, length)
	for i := range buf {
		out[i] = base62Alphabet[int(buf[i])%len(base62Alphabet)]
	}

	return string(out), nil
}

// validateAlias enforces the user-facing alias shape (3-20 chars, letters,
// digits, hyphens and underscores) and the reserved-path rule.
func validateAlias(alias string) error {
	if !aliasPattern.MatchString(alias) {
		return ErrInvalidAlias
	}
	if IsReservedCode(alias) {
		return ErrReservedAlias
	}
	return nil
}
