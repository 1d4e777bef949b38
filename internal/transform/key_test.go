package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyKeyDeterministic(t *testing.T) {
	a := PropertyKey("12 Oak St.", "Austin", "TX", "78701")
	b := PropertyKey("12 Oak St.", "Austin", "TX", "78701")
	assert.Equal(t, a, b)
}

func TestPropertyKeyNormalizesBeforeHashing(t *testing.T) {
	canonical := PropertyKey("12 Oak St", "Austin", "TX", "78701")

	variants := []struct {
		street, city, state, zip string
	}{
		{"  12  Oak   St. ", "Austin", "TX", "78701"},
		{"12 Oak St.", " Austin ", "tx", "78701"},
		{"12 Oak, St", "Austin,", "TX", "78701"},
	}
	for _, v := range variants {
		assert.Equal(t, canonical, PropertyKey(v.street, v.city, v.state, v.zip),
			"variant %+v", v)
	}
}

func TestPropertyKeyDistinctTuples(t *testing.T) {
	seen := make(map[string]bool)
	tuples := [][4]string{
		{"12 Oak St", "Austin", "TX", "78701"},
		{"12 Oak St", "Austin", "TX", "78702"},
		{"12 Oak St", "Dallas", "TX", "78701"},
		{"13 Oak St", "Austin", "TX", "78701"},
		{"12 Oak St", "Austin", "OK", "78701"},
	}
	for _, tup := range tuples {
		key := PropertyKey(tup[0], tup[1], tup[2], tup[3])
		assert.False(t, seen[key], "collision for %v", tup)
		seen[key] = true
	}
}

func TestPropertyKeyShape(t *testing.T) {
	key := PropertyKey("12 Oak St", "Austin", "TX", "78701")
	require.Len(t, key, 19)
	assert.Equal(t, "TX-", key[:3])
	assert.LessOrEqual(t, len(key), 32)
}

func TestPropertyKeyMissingState(t *testing.T) {
	key := PropertyKey("12 Oak St", "Austin", "", "78701")
	assert.Equal(t, "XX-", key[:3])
}
