package fuzzy

import (
	"fmt"
	"testing"

	"github.com/agnivade/levenshtein"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Email(t *testing.T) {
	idx := New()
	idx.Insert("mika@gmail.com")
	idx.Insert("mika@gmail.comi")

	assert.ElementsMatch(t, []string{"mika@gmail.com", "mika@gmail.comi"}, idx.Search("mika@gmail.com", 1))
	assert.Equal(t, []string{"mika@gmail.comi"}, idx.Search("mik@gmail.comi", 1))
	assert.Empty(t, idx.Search("john.smith@example.org", 3))
}

func TestSearch_ExactAtZero(t *testing.T) {
	idx := New()
	idx.Insert("+358401234567")
	idx.Insert("+358401234568")

	assert.Equal(t, []string{"+358401234567"}, idx.Search("+358401234567", 0))
	assert.Empty(t, idx.Search("+35840123456", 0))
	assert.Len(t, idx.Search("+358401234567", 1), 2)
}

func TestSearch_LexicographicOrder(t *testing.T) {
	idx := New()
	for _, s := range []string{"cab", "abc", "abd", "bbc"} {
		idx.Insert(s)
	}

	assert.Equal(t, []string{"abc", "abd", "bbc"}, idx.Search("abc", 1))
}

func TestSearch_EmptyStrings(t *testing.T) {
	idx := New()
	idx.Insert("")
	idx.Insert("a")
	idx.Insert("ab")

	assert.Equal(t, []string{""}, idx.Search("", 0))
	assert.Equal(t, []string{"", "a"}, idx.Search("", 1))
	assert.Equal(t, []string{"", "a", "ab"}, idx.Search("b", 2))
	assert.Nil(t, idx.Search("a", -1))
}

func TestSearch_LengthPruning(t *testing.T) {
	idx := New()
	idx.Insert("anna virtanen")
	idx.Insert("anna virtanen-korhonen")

	assert.Equal(t, []string{"anna virtanen"}, idx.Search("anna virtane", 2))
}

func TestSearch_Unicode(t *testing.T) {
	idx := New()
	idx.Insert("jääskeläinen")

	assert.Equal(t, []string{"jääskeläinen"}, idx.Search("jaaskeläinen", 2))
	assert.Empty(t, idx.Search("jaaskelainen", 2))
}

func TestInsert_Idempotent(t *testing.T) {
	idx := New()
	assert.True(t, idx.Insert("matti"))
	assert.False(t, idx.Insert("matti"))
	assert.True(t, idx.Insert("mat"))

	assert.Equal(t, 2, idx.Len())
	assert.True(t, idx.Contains("mat"))
	assert.False(t, idx.Contains("ma"))
	assert.Equal(t, []string{"matti"}, idx.Search("matti", 0))
}

// TestSearch_AgreesWithBruteForce compares the trie against a full scan.
func TestSearch_AgreesWithBruteForce(t *testing.T) {
	words := make([]string, 0, 600)
	for i := 0; i < 600; i++ {
		words = append(words, fmt.Sprintf("user%03d@mail%d.fi", i%211, i%7))
	}
	idx := New()
	for _, w := range words {
		idx.Insert(w)
	}

	queries := []string{"user010@mail3.fi", "usr100@mail1.fi", "user2@mail2.fi", "", "xyz"}
	for _, q := range queries {
		for k := 0; k <= 2; k++ {
			want := map[string]struct{}{}
			for _, w := range words {
				if levenshtein.ComputeDistance(q, w) <= k {
					want[w] = struct{}{}
				}
			}
			got := idx.Search(q, k)
			require.Len(t, got, len(want), "query %q k=%d", q, k)
			for _, g := range got {
				assert.Contains(t, want, g)
			}
		}
	}
}
