package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentityValidator(t *testing.T) {
	validator := NewIdentityValidator()
	assert.NotNil(t, validator)
}

func TestValidatePhone_ValidNumbers(t *testing.T) {
	validator := NewIdentityValidator()

	validNumbers := []struct {
		input    string
		expected string
		name     string
	}{
		{"0771234567", "0771234567", "Standard format"},
		{"077 123 4567", "0771234567", "With spaces"},
		{"077-123-4567", "0771234567", "With dashes"},
		{"(077) 123 4567", "0771234567", "With parentheses"},
		{"0701234567", "0701234567", "Mobitel 070"},
		{"0721234567", "0721234567", "Hutch 072"},
		{"0741234567", "0741234567", "Dialog 074"},
		{"0751234567", "0751234567", "Airtel 075"},
		{"0791234567", "0791234567", "Dialog 079"},
		{"+94771234567", "0771234567", "With country code"},
		{"94771234567", "0771234567", "Country code without plus"},
	}

	for _, tc := range validNumbers {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.ValidatePhone(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
		})
	}
}

func TestValidatePhone_InvalidNumbers(t *testing.T) {
	validator := NewIdentityValidator()

	invalidNumbers := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyPhone, "Empty string"},
		{"123", ErrInvalidLength, "Too short"},
		{"07712345678", ErrInvalidLength, "Too long"},
		{"0731234567", ErrInvalidPrefix, "Unassigned prefix 073"},
		{"0111234567", ErrInvalidPrefix, "Fixed line prefix"},
		{"077123456a", ErrInvalidFormat, "Contains letters"},
		{"077 123 456!", ErrInvalidFormat, "Contains special characters"},
		{"1234567890", ErrInvalidPrefix, "Valid length but invalid prefix"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.ValidatePhone(tc.input)
			assert.Error(t, err)
			assert.Equal(t, tc.expectedErr, err)
		})
	}
}

func TestValidateNIC(t *testing.T) {
	validator := NewIdentityValidator()

	t.Run("Old Format", func(t *testing.T) {
		sanitized, err := validator.ValidateNIC("853421234V")
		require.NoError(t, err)
		assert.Equal(t, "853421234V", sanitized)
	})

	t.Run("Old Format Lowercase Suffix", func(t *testing.T) {
		sanitized, err := validator.ValidateNIC("853421234v")
		require.NoError(t, err)
		assert.Equal(t, "853421234V", sanitized)
	})

	t.Run("Old Format X Suffix", func(t *testing.T) {
		sanitized, err := validator.ValidateNIC("853421234x")
		require.NoError(t, err)
		assert.Equal(t, "853421234X", sanitized)
	})

	t.Run("New Format", func(t *testing.T) {
		sanitized, err := validator.ValidateNIC("200012345678")
		require.NoError(t, err)
		assert.Equal(t, "200012345678", sanitized)
	})

	t.Run("With Surrounding Whitespace", func(t *testing.T) {
		sanitized, err := validator.ValidateNIC(" 200012345678 ")
		require.NoError(t, err)
		assert.Equal(t, "200012345678", sanitized)
	})

	t.Run("Invalid", func(t *testing.T) {
		invalid := []string{
			"12345",
			"853421234",    // old format missing suffix
			"853421234Z",   // invalid suffix letter
			"20001234567",  // 11 digits
			"2000123456789", // 13 digits
			"85342123aV",
		}
		for _, nic := range invalid {
			_, err := validator.ValidateNIC(nic)
			assert.Equal(t, ErrInvalidNIC, err, "input: %s", nic)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := validator.ValidateNIC("")
		assert.Equal(t, ErrEmptyNIC, err)
	})
}

func TestFormatPhone(t *testing.T) {
	validator := NewIdentityValidator()

	formatted, err := validator.FormatPhone("0771234567")
	require.NoError(t, err)
	assert.Equal(t, "077 123 4567", formatted)

	_, err = validator.FormatPhone("123")
	assert.Error(t, err)
}

func TestConvenienceChecks(t *testing.T) {
	validator := NewIdentityValidator()

	assert.True(t, validator.IsValidPhone("0771234567"))
	assert.False(t, validator.IsValidPhone("0731234567"))
	assert.True(t, validator.IsValidNIC("853421234V"))
	assert.False(t, validator.IsValidNIC("853421234"))
}
