// Package resolve maps a free-text entity name from a chat message onto one
// of the user's existing entities.
//
// Matching runs through a ladder of tiers, each applied only when the
// previous one produced nothing:
//
//  1. case-insensitive exact name match
//  2. substring containment in either direction
//  3. token overlap (any query token contained in any candidate token)
//  4. normalized Levenshtein similarity ≥ SimilarityFloor, best three
//
// A single exact or substring match is authoritative. Multiple substring
// matches are returned as ambiguous so the confirmation layer can ask the
// user which one they meant, rather than guessing.
package resolve

import (
	"sort"
	"strings"
)

// SimilarityFloor is the minimum normalized Levenshtein similarity for a
// candidate to be offered as an alternative.
const SimilarityFloor = 0.3

// MaxAlternatives caps how many edit-distance alternatives are offered.
const MaxAlternatives = 3

// Candidate is one existing entity eligible for matching.
type Candidate struct {
	ID   string
	Name string
}

// Resolution is the outcome of a Resolve call.
//
// Exactly one of the following shapes holds:
//   - Match != nil, Alternatives empty  → unambiguous hit, safe to act on.
//   - Match == nil, Alternatives non-empty → either an ambiguous multi-match
//     (Ambiguous true) that needs user disambiguation, or fuzzy suggestions
//     (Ambiguous false) for a "did you mean" reply.
//   - Match == nil, Alternatives empty → nothing cleared any tier.
type Resolution struct {
	Match        *Candidate
	Alternatives []Candidate
	// Ambiguous is true when multiple candidates matched equally well and
	// the caller must not auto-select among Alternatives.
	Ambiguous bool
}

// Found reports whether resolution produced an authoritative match.
func (r Resolution) Found() bool { return r.Match != nil }

// Resolve finds the candidate the query most plausibly refers to.
// Candidates with empty names are skipped. The query is matched
// case-insensitively and with surrounding whitespace ignored.
func Resolve(query string, candidates []Candidate) Resolution {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || len(candidates) == 0 {
		return Resolution{}
	}

	// Tier 1: exact match.
	var exact []Candidate
	for _, c := range candidates {
		if strings.EqualFold(strings.TrimSpace(c.Name), q) {
			exact = append(exact, c)
		}
	}
	if len(exact) == 1 {
		m := exact[0]
		return Resolution{Match: &m}
	}
	if len(exact) > 1 {
		// Duplicate names; the user has to pick by ID.
		return Resolution{Alternatives: exact, Ambiguous: true}
	}

	// Tier 2: substring containment, either direction.
	var sub []Candidate
	for _, c := range candidates {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" {
			continue
		}
		if strings.Contains(name, q) || strings.Contains(q, name) {
			sub = append(sub, c)
		}
	}
	if len(sub) == 1 {
		m := sub[0]
		return Resolution{Match: &m}
	}
	if len(sub) > 1 {
		return Resolution{Alternatives: sub, Ambiguous: true}
	}

	// Tier 3: token overlap.
	qTokens := strings.Fields(q)
	var overlap []Candidate
	for _, c := range candidates {
		if tokensOverlap(qTokens, strings.Fields(strings.ToLower(c.Name))) {
			overlap = append(overlap, c)
		}
	}
	if len(overlap) == 1 {
		m := overlap[0]
		return Resolution{Match: &m}
	}
	if len(overlap) > 1 {
		return Resolution{Alternatives: overlap, Ambiguous: true}
	}

	// Tier 4: edit-distance suggestions, ranked by similarity.
	type scored struct {
		c     Candidate
		score float64
	}
	var near []scored
	for _, c := range candidates {
		s := Similarity(q, strings.ToLower(strings.TrimSpace(c.Name)))
		if s >= SimilarityFloor {
			near = append(near, scored{c: c, score: s})
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].score > near[j].score })
	if len(near) > MaxAlternatives {
		near = near[:MaxAlternatives]
	}

	alts := make([]Candidate, 0, len(near))
	for _, s := range near {
		alts = append(alts, s.c)
	}
	return Resolution{Alternatives: alts}
}

// tokensOverlap reports whether any query token is contained in any
// candidate token.
func tokensOverlap(query, name []string) bool {
	for _, qt := range query {
		if qt == "" {
			continue
		}
		for _, nt := range name {
			if nt == "" {
				continue
			}
			if strings.Contains(nt, qt) {
				return true
			}
		}
	}
	return false
}
