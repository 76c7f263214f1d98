package services

import (
	"strings"

	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// Wildcard marks the single substitution point in a code pattern
const Wildcard = "*"

// CodePattern is an item-code pattern with at most one substitution point.
//
// "OLD_*" matches every code starting with OLD_ and captures the rest.
// Matching is by prefix only: text after the wildcard is ignored, so
// "OLD_*_KG" matches OLD_2_LB as well and captures "2_LB".
// A pattern without a wildcard matches only itself.
type CodePattern struct {
	raw      string
	prefix   string
	wildcard bool
}

// ParseCodePattern splits a pattern around its first wildcard
func ParseCodePattern(pattern string) CodePattern {
	idx := strings.Index(pattern, Wildcard)
	if idx < 0 {
		return CodePattern{raw: pattern, prefix: pattern}
	}
	return CodePattern{
		raw:      pattern,
		prefix:   pattern[:idx],
		wildcard: true,
	}
}

// String returns the pattern as written
func (p CodePattern) String() string {
	return p.raw
}

// HasWildcard reports whether the pattern has a substitution point
func (p CodePattern) HasWildcard() bool {
	return p.wildcard
}

// Prefix returns the literal text before the wildcard
func (p CodePattern) Prefix() string {
	return p.prefix
}

// Match reports whether code fits the pattern and returns the text captured by the wildcard
func (p CodePattern) Match(code entities.ItemCode) (string, bool) {
	s := string(code)
	if !p.wildcard {
		return "", s == p.raw
	}
	if !strings.HasPrefix(s, p.prefix) {
		return "", false
	}
	return s[len(p.prefix):], true
}

// Expand substitutes captured into the first wildcard, or returns the pattern verbatim without one
func (p CodePattern) Expand(captured string) entities.ItemCode {
	if !p.wildcard {
		return entities.ItemCode(p.raw)
	}
	return entities.ItemCode(strings.Replace(p.raw, Wildcard, captured, 1))
}

// CodeMapping pairs a matched old code with its computed replacement
type CodeMapping struct {
	Old entities.ItemCode
	New entities.ItemCode
}

// MapCodes applies oldPattern to codes and computes each replacement from newPattern.
// Results keep the order of codes.
func MapCodes(codes []entities.ItemCode, oldPattern, newPattern CodePattern) []CodeMapping {
	var mappings []CodeMapping
	for _, code := range codes {
		captured, ok := oldPattern.Match(code)
		if !ok {
			continue
		}
		mappings = append(mappings, CodeMapping{Old: code, New: newPattern.Expand(captured)})
	}
	return mappings
}
