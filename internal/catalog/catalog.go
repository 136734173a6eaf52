package catalog

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"

	"storebot/internal/normalize"
	"storebot/pkg"
)

// LoadError is returned when the catalog source is unreadable or malformed.
// The process must not start serving with an unloaded catalog.
type LoadError struct {
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog load: %s: %v", e.Reason, e.Err)
	}
	return "catalog load: " + e.Reason
}

func (e *LoadError) Unwrap() error { return e.Err }

// Entry pairs a catalog record with its precomputed normalized fields.
type Entry struct {
	Record  pkg.StoreRecord
	Store   string   // normalized store name
	City    string   // normalized city
	Aliases []string // normalized aliases
}

// Store holds the catalog loaded once at startup. Read-only afterwards,
// safe for concurrent queries without locking.
type Store struct {
	entries []Entry
	byCity  map[string][]pkg.StoreRecord
}

type catalogFile struct {
	Stores []pkg.StoreRecord `json:"stores"`
}

// Load reads and indexes the stores JSON file. Every record needs a
// non-empty store and city; a repeated (store, city, alias) identity is
// ambiguous and fails the load.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Reason: "reading " + path, Err: err}
	}

	var file catalogFile
	if err := sonic.Unmarshal(data, &file); err != nil {
		return nil, &LoadError{Reason: "parsing " + path, Err: err}
	}

	s := &Store{
		entries: make([]Entry, 0, len(file.Stores)),
		byCity:  make(map[string][]pkg.StoreRecord),
	}

	seen := make(map[string]map[string]bool) // (store|city) -> alias set
	for i, rec := range file.Stores {
		if rec.Store == "" || rec.City == "" {
			return nil, &LoadError{Reason: fmt.Sprintf("record %d: store and city are required", i)}
		}

		entry := Entry{
			Record: rec,
			Store:  normalize.Normalize(rec.Store),
			City:   normalize.Normalize(rec.City),
		}
		for _, alias := range rec.Aliases {
			entry.Aliases = append(entry.Aliases, normalize.Normalize(alias))
		}

		key := entry.Store + "|" + entry.City
		aliases := seen[key]
		if aliases == nil {
			aliases = make(map[string]bool)
			seen[key] = aliases
		}
		// a record without aliases claims the bare identity
		keys := entry.Aliases
		if len(keys) == 0 {
			keys = []string{""}
		}
		for _, a := range keys {
			if aliases[a] {
				return nil, &LoadError{Reason: fmt.Sprintf("record %d: duplicate identity (%s, %s)", i, rec.Store, rec.City)}
			}
			aliases[a] = true
		}

		s.entries = append(s.entries, entry)
		s.byCity[entry.City] = append(s.byCity[entry.City], rec)
	}

	return s, nil
}

// Entries returns all records with their normalized fields.
func (s *Store) Entries() []Entry {
	return s.entries
}

// All returns every catalog record.
func (s *Store) All() []pkg.StoreRecord {
	records := make([]pkg.StoreRecord, len(s.entries))
	for i, e := range s.entries {
		records[i] = e.Record
	}
	return records
}

// LookupByCity returns the records whose normalized city equals token.
func (s *Store) LookupByCity(token string) []pkg.StoreRecord {
	return s.byCity[token]
}

// Len reports the number of loaded records.
func (s *Store) Len() int {
	return len(s.entries)
}
