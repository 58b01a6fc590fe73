package quiz

import "math/rand/v2"

// Shuffle permutes s in place with Fisher-Yates: walking from the last index
// down to 1 and swapping each element with a uniformly chosen index in
// [0, i], every ordering is equally likely. A nil rng uses the global source.
func Shuffle[T any](rng *rand.Rand, s []T) {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(s) - 1; i > 0; i-- {
		j := intN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
