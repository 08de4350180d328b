package auth

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tendant/contextauth/pkg/domain"
)

const maxDeviceIDLength = 256

// SanitizeDeviceID trims the client supplied device identifier and strips
// control characters. An empty result means no device was sent.
func SanitizeDeviceID(deviceID string) (string, error) {
	cleaned := strings.TrimSpace(removeControlChars(deviceID))
	if err := ValidateStringLength("deviceId", cleaned, 0, maxDeviceIDLength); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrMissingContext, err)
	}
	return cleaned, nil
}

// ValidateStringLength validates that a string is within the specified length constraints.
func ValidateStringLength(field, value string, min, max int) error {
	length := len(value)

	if min > 0 && length < min {
		return fmt.Errorf("%s must be at least %d characters long", field, min)
	}

	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters long", field, max)
	}

	return nil
}

func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
