package combination

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// HashLen is the length of the hex digest returned by Hash.
const HashLen = sha256.Size * 2

// Hash fingerprints a combination by its label set. Labels are sorted
// lexicographically and serialized as a JSON array (`["A1","B2"]`) before
// hashing, so any permutation of the same labels yields the same digest.
func Hash(labels []string) string {
	sorted := append(make([]string, 0, len(labels)), labels...)
	sort.Strings(sorted)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(sorted) // a []string always encodes

	sum := sha256.Sum256(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return hex.EncodeToString(sum[:])
}
