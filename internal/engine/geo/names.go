package geo

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName folds a region name into a lookup key: diacritics stripped,
// lower case, inner whitespace collapsed. "Nagaland ", "NAGALAND" and
// "Nāgāland" all map to "nagaland".
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// NameSet is an immutable set of normalized names.
type NameSet struct {
	names map[string]struct{}
}

func NewNameSet(names ...string) NameSet {
	s := NameSet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.names[NormalizeName(n)] = struct{}{}
	}
	return s
}

// Contains reports whether name, after normalization, is in the set.
func (s NameSet) Contains(name string) bool {
	_, ok := s.names[NormalizeName(name)]
	return ok
}

func (s NameSet) Len() int {
	return len(s.names)
}
