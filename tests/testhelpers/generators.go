package testhelpers

import (
	"math/rand"
	"time"
)

// generates a new random number seeded with the current time
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Generates an AlphaNumericString of random length (0, 21]
func GenRandomAlphaNumericString(rng *rand.Rand) string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	length := rng.Intn(20) + 1
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		result[i] = chars[rng.Intn(len(chars))]
	}

	return string(result)
}

// Generates n distinct ids of the form prefix<random>
func GenUniqueIds(rng *rand.Rand, prefix string, n int) []string {
	seen := map[string]bool{}
	ids := make([]string, 0, n)
	for len(ids) < n {
		id := prefix + GenRandomAlphaNumericString(rng)
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
