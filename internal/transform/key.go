package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var addressPunctRe = regexp.MustCompile(`[.,]+`)
var addressSpaceRe = regexp.MustCompile(`\s+`)

// PropertyKey derives the deterministic identifier for a property from its
// normalized address tuple. Identical normalized tuples always hash to the
// same key, which is what makes reloads idempotent. The key is the
// two-letter state (or XX) plus the first 16 hex characters of a sha256
// digest, well inside the varchar(32) key column.
func PropertyKey(streetAddress, city, state, zipCode string) string {
	parts := make([]string, 0, 4)
	for _, raw := range []string{streetAddress, city, state, zipCode} {
		if p := normalizeAddressPart(raw); p != "" {
			parts = append(parts, p)
		}
	}
	seed := strings.Join(parts, "||")

	sum := sha256.Sum256([]byte(seed))
	digest := hex.EncodeToString(sum[:])[:16]

	prefix := strings.ToUpper(normalizeAddressPart(state))
	if prefix == "" {
		prefix = "XX"
	}
	return prefix + "-" + digest
}

// Key derives the property key from the record's normalized address
// fields. Only called on accepted records, so the address tuple is
// guaranteed present.
func (r *CanonicalRecord) Key() string {
	return PropertyKey(
		requiredString(r, "street_address"),
		requiredString(r, "city"),
		requiredString(r, "state"),
		requiredString(r, "zip_code"),
	)
}

// normalizeAddressPart lowercases, trims, collapses whitespace, and strips
// punctuation that carries no address semantics.
func normalizeAddressPart(raw string) string {
	s := addressPunctRe.ReplaceAllString(raw, " ")
	s = addressSpaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.ToLower(strings.TrimSpace(s))
}
