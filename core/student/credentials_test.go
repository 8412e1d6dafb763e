package student

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseUsername(t *testing.T) {
	tests := []struct {
		name      string
		firstName string
		lastName  string
		want      string
	}{
		{name: "simple", firstName: "Ann", lastName: "Lee", want: "annlee2026"},
		{name: "mixed case", firstName: "ANN", lastName: "lEe", want: "annlee2026"},
		{name: "punctuation and spaces", firstName: " Jean-Luc ", lastName: "O'Neil", want: "jeanluconeil2026"},
		{name: "truncated prefixes", firstName: "Maximilianus", lastName: "Bartholomew", want: "maximilianbartholome2026"},
		{name: "digits kept", firstName: "Ann2", lastName: "Lee", want: "ann2lee2026"},
		{name: "no alphanumerics", firstName: "Éé", lastName: "ßß", want: "student2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseUsername(tt.firstName, tt.lastName, 2026))
		})
	}
}

func TestUsernameCandidates(t *testing.T) {
	candidates := UsernameCandidates("annlee2026")
	require.Len(t, candidates, maxUsernameAttempts)
	assert.Equal(t, "annlee2026", candidates[0])
	assert.Equal(t, "annlee20262", candidates[1])
	assert.Equal(t, "annlee202610", candidates[maxUsernameAttempts-1])
}

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		pwd, err := GeneratePassword()
		require.NoError(t, err)
		require.Len(t, pwd, passwordLen)
		for _, c := range pwd {
			assert.True(t, strings.ContainsRune(passwordAlphabet, c), "unexpected char %q", c)
		}
		seen[pwd] = true
	}
	assert.Greater(t, len(seen), 1)

	randIntFunc = func(io.Reader, *big.Int) (*big.Int, error) { return nil, errors.New("no entropy") }
	defer func() { randIntFunc = rand.Int }()
	_, err := GeneratePassword()
	assert.EqualError(t, err, "no entropy")
}
