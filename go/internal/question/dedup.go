package question

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DedupKey derives a stable identity for a question from its normalized
// prompt and choices. Two fetches of the same question from different
// sources, or with different whitespace and casing, collapse to one key.
func DedupKey(prompt string, choices []string) string {
	h := sha256.New()
	h.Write([]byte(normalize(prompt)))
	for _, c := range choices {
		h.Write([]byte{0})
		h.Write([]byte(normalize(c)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// normalize lowercases and collapses all runs of whitespace to a single
// space.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
