package student

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// Credential policy v1:
//   - username: first 10 alphanumerics of the first name + first 10 of the last name + year, lowercased
//   - password: 8 characters drawn uniformly from [A-Za-z0-9] with crypto/rand
//   - a taken username gets a numeric suffix starting at 2, up to maxUsernameAttempts candidates
const (
	CredentialPolicyVersion = 1

	namePrefixLen       = 10
	passwordLen         = 8
	passwordAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	maxUsernameAttempts = 10
	fallbackUsername    = "student"
)

var (
	nonAlnumRegex = regexp.MustCompile(`[^a-zA-Z0-9]`)

	randIntFunc = rand.Int // mockable
)

// Credentials are the generated login details of a new Student.
// Password is plaintext and must only ever be returned once to the registrant.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func sanitizeName(name string, n int) string {
	s := strings.ToLower(nonAlnumRegex.ReplaceAllString(name, ""))
	if len(s) > n {
		s = s[:n]
	}
	return s
}

// BaseUsername derives the first username candidate from a student's names.
func BaseUsername(firstName, lastName string, year int) string {
	prefix := sanitizeName(firstName, namePrefixLen) + sanitizeName(lastName, namePrefixLen)
	if prefix == "" {
		prefix = fallbackUsername
	}
	return strings.ToLower(prefix + strconv.Itoa(year))
}

// UsernameCandidates returns the usernames tried, in order, for base.
func UsernameCandidates(base string) []string {
	candidates := make([]string, 0, maxUsernameAttempts)
	candidates = append(candidates, base)
	for n := 2; len(candidates) < maxUsernameAttempts; n++ {
		candidates = append(candidates, base+strconv.Itoa(n))
	}
	return candidates
}

// GeneratePassword returns a random alphanumeric password.
func GeneratePassword() (string, error) {
	alphabetLen := big.NewInt(int64(len(passwordAlphabet)))
	var b strings.Builder
	b.Grow(passwordLen)
	for i := 0; i < passwordLen; i++ {
		n, err := randIntFunc(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		b.WriteByte(passwordAlphabet[n.Int64()])
	}
	return b.String(), nil
}
