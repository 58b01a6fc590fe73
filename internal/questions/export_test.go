package questions

import "testing"

// SetMaxSourceBytes lowers the source size bound for the duration of t.
func SetMaxSourceBytes(t *testing.T, n int64) {
	prev := maxSourceBytes
	maxSourceBytes = n
	t.Cleanup(func() { maxSourceBytes = prev })
}
