package envname_test

import (
	"strings"
	"testing"

	"github.com/seek-and-deploy/deployer/internal/envname"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected error
	}{
		{name: "single token", input: "dev"},
		{name: "with version", input: "qa-b"},
		{name: "upper-case version", input: "qa-Z"},
		{name: "exactly twenty", input: strings.Repeat("x", 20)},
		{name: "twenty multi-byte characters", input: strings.Repeat("é", 20)},
		{name: "too long multi-byte", input: strings.Repeat("é", 21), expected: envname.NameTooLongError{Name: strings.Repeat("é", 21), Length: 21}},
		{name: "empty", input: "", expected: envname.EmptyNameError{}},
		{name: "too long", input: strings.Repeat("x", 21), expected: envname.NameTooLongError{Name: strings.Repeat("x", 21), Length: 21}},
		{name: "three tokens", input: "dev-a-b", expected: envname.TooManyTokensError{Name: "dev-a-b", Count: 3}},
		{name: "long version", input: "dev-ab", expected: envname.InvalidVersionTokenError{Name: "dev-ab", Token: "ab"}},
		{name: "digit version", input: "dev-1", expected: envname.InvalidVersionTokenError{Name: "dev-1", Token: "1"}},
		{name: "empty version", input: "dev-", expected: envname.InvalidVersionTokenError{Name: "dev-", Token: ""}},
		{name: "length checked before tokens", input: "a-b-c-d-e-f-g-h-i-j-k", expected: envname.NameTooLongError{Name: "a-b-c-d-e-f-g-h-i-j-k", Length: 21}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := envname.Validate(tc.input)
			if tc.expected == nil {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Equal(t, tc.expected, err)
			assert.ErrorIs(t, err, envname.ErrInvalidName)
		})
	}
}

func TestEffective(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dev", envname.Effective("dev", ""))
	assert.Equal(t, "dev-c", envname.Effective("dev", "c"))

	base, version := envname.Split("dev-c")
	assert.Equal(t, "dev", base)
	assert.Equal(t, "c", version)
}
