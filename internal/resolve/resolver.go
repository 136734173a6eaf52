package resolve

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"storebot/internal/catalog"
	"storebot/internal/normalize"
	"storebot/pkg"
)

const (
	exactScore = 1.0
	aliasScore = 0.9

	// DefaultThreshold is the minimum fuzzy similarity kept as a match.
	DefaultThreshold = 0.75
	// DefaultMinMatches is how many exact/alias hits suppress the fuzzy stage.
	DefaultMinMatches = 1
)

// Config tunes the resolution stages.
type Config struct {
	Threshold  float64 // fuzzy similarity cutoff, in [0,1]
	MinMatches int     // run fuzzy stage only below this many matches
}

// Resolver matches free-text queries against the store catalog.
type Resolver struct {
	catalog    *catalog.Store
	threshold  float64
	minMatches int
}

// New creates a resolver over the loaded catalog.
func New(c *catalog.Store, cfg Config) *Resolver {
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.MinMatches <= 0 {
		cfg.MinMatches = DefaultMinMatches
	}
	return &Resolver{
		catalog:    c,
		threshold:  cfg.Threshold,
		minMatches: cfg.MinMatches,
	}
}

// Resolve returns ranked candidate matches for the raw query, best first.
// An empty result is a normal outcome, never an error: empty or
// whitespace-only input resolves to nothing.
func (r *Resolver) Resolve(raw string) []pkg.MatchResult {
	tokens := queryTokens(raw)
	if len(tokens) == 0 {
		return nil
	}

	type key struct{ store, city string }
	best := make(map[key]pkg.MatchResult)

	entries := r.catalog.Entries()

	// exact stage: full-token equality on store name or city
	for _, e := range entries {
		k := key{e.Store, e.City}
		for _, tok := range tokens {
			if tok == e.Store || tok == e.City {
				best[k] = pkg.MatchResult{Record: e.Record, Score: exactScore, Kind: pkg.MatchExact}
				break
			}
		}
	}

	// alias stage, only for records without an exact hit
	for _, e := range entries {
		k := key{e.Store, e.City}
		if _, ok := best[k]; ok {
			continue
		}
		for _, alias := range e.Aliases {
			if matched := tokenEquals(tokens, alias); matched {
				best[k] = pkg.MatchResult{Record: e.Record, Score: aliasScore, Kind: pkg.MatchAlias}
				break
			}
		}
	}

	// fuzzy stage runs only when the cheaper stages found too little
	if len(best) < r.minMatches {
		for _, e := range entries {
			k := key{e.Store, e.City}
			if _, ok := best[k]; ok {
				continue
			}
			fields := append([]string{e.Store, e.City}, e.Aliases...)
			score := 0.0
			for _, tok := range tokens {
				for _, field := range fields {
					if s := similarity(tok, field); s > score {
						score = s
					}
				}
			}
			if score >= r.threshold {
				best[k] = pkg.MatchResult{Record: e.Record, Score: score, Kind: pkg.MatchFuzzy}
			}
		}
	}

	results := make([]pkg.MatchResult, 0, len(best))
	for _, m := range best {
		results = append(results, m)
	}
	// deterministic order: score desc, then store, then city on normalized form
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		si, sj := normalize.Normalize(results[i].Record.Store), normalize.Normalize(results[j].Record.Store)
		if si != sj {
			return si < sj
		}
		return normalize.Normalize(results[i].Record.City) < normalize.Normalize(results[j].Record.City)
	})
	return results
}

// queryTokens builds the candidate token set: the whole normalized query
// plus each separator-split word, deduplicated.
func queryTokens(raw string) []string {
	whole := normalize.Normalize(raw)
	if whole == "" {
		return nil
	}

	tokens := []string{whole}
	seen := map[string]bool{whole: true}
	for _, word := range strings.Split(whole, " ") {
		if word != "" && !seen[word] {
			seen[word] = true
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func tokenEquals(tokens []string, field string) bool {
	for _, tok := range tokens {
		if tok == field {
			return true
		}
	}
	return false
}

// similarity is a normalized edit-distance score in [0,1]: 1 for equal
// strings, 0 when every character differs.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
