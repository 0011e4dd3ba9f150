package testutil

import (
	"fmt"
	"math/rand"
)

// RandomString generates a random lowercase string given the pseudo random source.
func RandomString(rndm *rand.Rand, length int) string {
	str := make([]rune, length)
	for i := range str {
		str[i] = 'a' + rune(rndm.Intn(26))
	}
	return string(str)
}

// RandomEmail generates a random but plausible account email.
func RandomEmail(rndm *rand.Rand) string {
	return fmt.Sprintf(
		"%s@%s.com",
		RandomString(rndm, 8),
		RandomString(rndm, 6),
	)
}
