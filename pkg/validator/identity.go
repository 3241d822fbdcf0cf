package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLength indicates phone number length is not 10 digits
	ErrInvalidLength = errors.New("phone number must be exactly 10 digits")

	// ErrInvalidPrefix indicates phone number doesn't start with valid Sri Lankan prefix
	ErrInvalidPrefix = errors.New("phone number must start with 070, 071, 072, 074, 075, 076, 077, 078, or 079")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrEmptyNIC indicates NIC number is empty
	ErrEmptyNIC = errors.New("NIC number cannot be empty")

	// ErrInvalidNIC indicates NIC number matches neither the old nor the new format
	ErrInvalidNIC = errors.New("NIC number must be 9 digits followed by V/X, or 12 digits")
)

// validPrefixes contains all valid Sri Lankan mobile operator prefixes
var validPrefixes = []string{
	"070", // Mobitel
	"071", // Mobitel
	"072", // Hutch
	"074", // Dialog
	"075", // Airtel
	"076", // Dialog
	"077", // Dialog
	"078", // Hutch
	"079", // Dialog
}

// phoneRegex matches digits only
var phoneRegex = regexp.MustCompile(`^\d+$`)

// NIC formats: old 123456789V (9 digits + V/X), new 200012345678 (12 digits)
var (
	oldNICRegex = regexp.MustCompile(`^\d{9}[VvXx]$`)
	newNICRegex = regexp.MustCompile(`^\d{12}$`)
)

// IdentityValidator validates Sri Lankan phone numbers and NIC numbers
type IdentityValidator struct{}

// NewIdentityValidator creates a new identity validator instance
func NewIdentityValidator() *IdentityValidator {
	return &IdentityValidator{}
}

// ValidatePhone validates a Sri Lankan phone number
// Accepts format: 0771234567 or 077 123 4567 or 077-123-4567
// Returns sanitized phone number (digits only) and error if invalid
func (v *IdentityValidator) ValidatePhone(phone string) (string, error) {
	if phone == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.SanitizePhone(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	if len(sanitized) != 10 {
		return "", ErrInvalidLength
	}

	if !v.IsValidPrefix(sanitized) {
		return "", ErrInvalidPrefix
	}

	return sanitized, nil
}

// SanitizePhone removes all non-digit characters from phone number
func (v *IdentityValidator) SanitizePhone(phone string) string {
	// Remove spaces, dashes, parentheses, and other common separators
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, "(", "")
	phone = strings.ReplaceAll(phone, ")", "")
	phone = strings.ReplaceAll(phone, "+", "")
	phone = strings.ReplaceAll(phone, ".", "")

	// Remove country code if present (94)
	if strings.HasPrefix(phone, "94") && len(phone) == 11 {
		phone = "0" + phone[2:]
	}

	return phone
}

// IsValidPrefix checks if phone number has a valid Sri Lankan mobile prefix
func (v *IdentityValidator) IsValidPrefix(phone string) bool {
	if len(phone) < 3 {
		return false
	}

	prefix := phone[:3]
	for _, validPrefix := range validPrefixes {
		if prefix == validPrefix {
			return true
		}
	}

	return false
}

// ValidateNIC validates a Sri Lankan national identity card number in either
// the old (9 digits + V/X) or new (12 digit) format.
// Returns the sanitized NIC with the suffix letter uppercased.
func (v *IdentityValidator) ValidateNIC(nic string) (string, error) {
	if nic == "" {
		return "", ErrEmptyNIC
	}

	sanitized := strings.TrimSpace(nic)
	sanitized = strings.ReplaceAll(sanitized, " ", "")

	switch {
	case oldNICRegex.MatchString(sanitized):
		return strings.ToUpper(sanitized), nil
	case newNICRegex.MatchString(sanitized):
		return sanitized, nil
	default:
		return "", ErrInvalidNIC
	}
}

// IsValidPhone is a convenience method that returns true if phone is valid
func (v *IdentityValidator) IsValidPhone(phone string) bool {
	_, err := v.ValidatePhone(phone)
	return err == nil
}

// IsValidNIC is a convenience method that returns true if NIC is valid
func (v *IdentityValidator) IsValidNIC(nic string) bool {
	_, err := v.ValidateNIC(nic)
	return err == nil
}

// FormatPhone formats a phone number in the standard display format: 07X XXX XXXX
func (v *IdentityValidator) FormatPhone(phone string) (string, error) {
	sanitized, err := v.ValidatePhone(phone)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s %s %s",
		sanitized[0:3],
		sanitized[3:6],
		sanitized[6:10],
	), nil
}
