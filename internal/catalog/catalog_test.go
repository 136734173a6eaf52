package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stores.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCatalog(t, `{"stores":[
		{"store":"Acme","city":"Springfield","aliases":["ACM"]},
		{"store":"Acme","city":"Shelbyville"},
		{"store":"Café Élodie","city":"New York"}
	]}`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	records := s.LookupByCity("springfield")
	require.Len(t, records, 1)
	assert.Equal(t, "Acme", records[0].Store)

	// city lookup is keyed by normalized form
	assert.Len(t, s.LookupByCity("new york"), 1)
	assert.Empty(t, s.LookupByCity("New York"))

	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "cafe elodie", entries[2].Store)
	assert.Equal(t, []string{"acm"}, entries[0].Aliases)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `{"stores":`},
		{"missing city", `{"stores":[{"store":"Acme"}]}`},
		{"missing store", `{"stores":[{"city":"Springfield"}]}`},
		{"duplicate identity", `{"stores":[
			{"store":"Acme","city":"Springfield"},
			{"store":"ACME","city":"springfield"}
		]}`},
		{"duplicate alias identity", `{"stores":[
			{"store":"Acme","city":"Springfield","aliases":["ACM"]},
			{"store":"Acme","city":"Springfield","aliases":["acm"]}
		]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeCatalog(t, tt.content))
			var loadErr *LoadError
			assert.ErrorAs(t, err, &loadErr)
		})
	}
}

func TestLoadAllowsDistinctAliases(t *testing.T) {
	path := writeCatalog(t, `{"stores":[
		{"store":"Acme","city":"Springfield","aliases":["ACM"]},
		{"store":"Acme","city":"Springfield","aliases":["ACME Corp"]}
	]}`)
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}
