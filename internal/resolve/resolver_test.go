package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storebot/internal/catalog"
	"storebot/pkg"
)

func testCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stores.json")
	content := `{"stores":[
		{"store":"Acme","city":"Springfield","aliases":["ACM"]},
		{"store":"Acme","city":"Shelbyville"},
		{"store":"Acmee","city":"Capital City"},
		{"store":"Hyperion Foods","city":"New York"}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	s, err := catalog.Load(path)
	require.NoError(t, err)
	return s
}

func TestResolveEmptyQuery(t *testing.T) {
	r := New(testCatalog(t), Config{})
	assert.Empty(t, r.Resolve(""))
	assert.Empty(t, r.Resolve("   "))
}

func TestResolveExact(t *testing.T) {
	r := New(testCatalog(t), Config{})

	results := r.Resolve("acme springfield")
	require.Len(t, results, 2) // both Acme records match the "acme" token
	assert.Equal(t, pkg.MatchExact, results[0].Kind)
	assert.Equal(t, 1.0, results[0].Score)
	// tie broken by normalized city: shelbyville before springfield
	assert.Equal(t, "Shelbyville", results[0].Record.City)
	assert.Equal(t, "Springfield", results[1].Record.City)
}

func TestResolveExactIsCaseAndPunctuationInsensitive(t *testing.T) {
	r := New(testCatalog(t), Config{})

	results := r.Resolve("Where is ACME in Springfield?")
	require.NotEmpty(t, results)
	assert.Equal(t, pkg.MatchExact, results[0].Kind)
	assert.Equal(t, "Acme", results[0].Record.Store)
}

func TestResolveMultiWordCity(t *testing.T) {
	r := New(testCatalog(t), Config{})

	results := r.Resolve("new york")
	require.Len(t, results, 1)
	assert.Equal(t, "Hyperion Foods", results[0].Record.Store)
	assert.Equal(t, pkg.MatchExact, results[0].Kind)
}

func TestResolveAlias(t *testing.T) {
	r := New(testCatalog(t), Config{})

	results := r.Resolve("acm")
	require.NotEmpty(t, results)
	assert.Equal(t, pkg.MatchAlias, results[0].Kind)
	assert.Equal(t, 0.9, results[0].Score)
	assert.Equal(t, "Springfield", results[0].Record.City)
}

func TestResolveFuzzy(t *testing.T) {
	r := New(testCatalog(t), Config{Threshold: 0.75})

	// "acms" is one substitution from "acme": similarity 0.75
	results := r.Resolve("acms")
	require.Len(t, results, 2)
	for _, m := range results {
		assert.Equal(t, pkg.MatchFuzzy, m.Kind)
		assert.GreaterOrEqual(t, m.Score, 0.75)
		assert.Equal(t, "Acme", m.Record.Store)
	}
}

func TestResolveFuzzySkippedWhenEnoughMatches(t *testing.T) {
	r := New(testCatalog(t), Config{MinMatches: 1})

	// "acme" matches two records exactly; the fuzzy stage must not add
	// the near-miss "Acmee" record
	results := r.Resolve("acme")
	require.Len(t, results, 2)
	for _, m := range results {
		assert.Equal(t, pkg.MatchExact, m.Kind)
	}
}

func TestResolveFuzzyRunsBelowMinMatches(t *testing.T) {
	r := New(testCatalog(t), Config{MinMatches: 3})

	results := r.Resolve("acme")
	require.Len(t, results, 3)
	assert.Equal(t, pkg.MatchExact, results[0].Kind)
	assert.Equal(t, pkg.MatchExact, results[1].Kind)
	assert.Equal(t, pkg.MatchFuzzy, results[2].Kind)
	assert.Equal(t, "Acmee", results[2].Record.Store)
}

func TestResolveNoMatch(t *testing.T) {
	r := New(testCatalog(t), Config{})
	assert.Empty(t, r.Resolve("zzzzzzzzzz"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("acme", "acme"))
	assert.InDelta(t, 0.8, similarity("acme", "acmee"), 1e-9)
	assert.Equal(t, 0.0, similarity("", "acme"))
}
