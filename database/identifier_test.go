package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIdentifier(t *testing.T) {
	t.Run("accepts plain identifiers", func(t *testing.T) {
		for _, id := range []string{"users", "team_membership", "Col1", "_private", "A"} {
			quoted, err := ValidateIdentifier(id)
			require.NoError(t, err, id)
			assert.Equal(t, `"`+id+`"`, quoted)
		}
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ValidateIdentifier("")
		assert.ErrorIs(t, err, ErrInvalidIdentifier)
	})

	t.Run("rejects embedded quotes", func(t *testing.T) {
		_, err := ValidateIdentifier(`users"; DROP TABLE users; --`)
		assert.ErrorIs(t, err, ErrInvalidIdentifier)
	})

	t.Run("rejects non alphanumeric characters", func(t *testing.T) {
		for _, id := range []string{"user name", "users;", "tab\tle", "semi-colon", "däta"} {
			_, err := ValidateIdentifier(id)
			assert.ErrorIs(t, err, ErrInvalidIdentifier, id)
		}
	})

	t.Run("rejects reserved words case insensitively", func(t *testing.T) {
		for _, id := range []string{"select", "SELECT", "Drop", "where", "ORDER"} {
			_, err := ValidateIdentifier(id)
			assert.ErrorIs(t, err, ErrInvalidIdentifier, id)
		}
	})

	t.Run("rejects overlong identifiers", func(t *testing.T) {
		_, err := ValidateIdentifier(strings.Repeat("a", 129))
		assert.ErrorIs(t, err, ErrInvalidIdentifier)

		_, err = ValidateIdentifier(strings.Repeat("a", 128))
		assert.NoError(t, err)
	})
}
