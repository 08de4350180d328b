package auth

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/tendant/contextauth/pkg/domain"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

const maxEmailLength = 254 // RFC 5321

// ValidateEmail checks that email is a plausible login address.
// All failures wrap domain.ErrInvalidEmail.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email address is required", domain.ErrInvalidEmail)
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("%w: email address is too long (max %d characters)", domain.ErrInvalidEmail, maxEmailLength)
	}

	addr, err := mail.ParseAddress(NormalizeEmail(email))
	if err != nil || addr.Name != "" || !emailRegex.MatchString(addr.Address) {
		return fmt.Errorf("%w: invalid email address format", domain.ErrInvalidEmail)
	}
	return nil
}

// NormalizeEmail normalizes an email address by lowercasing and trimming.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
