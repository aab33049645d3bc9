package planner

import (
	"sort"
	"strings"

	"github.com/platewise/v1/internal/domain/recipe"
)

// Selection scoring weights.
const (
	pantryOverlapWeight = 1.5
	timePenaltyRate     = 0.02
	timePenaltyFloor    = 25
	defaultTimeMinutes  = 30

	// Primary-tag repeats are skipped until this share of the target
	// slots is filled; after that availability beats variety.
	varietyShare = 0.7
)

// Select ranks and diversifies candidates against pantry, exclusion, and
// time constraints. Pure function: deterministic for a given input, ties
// broken only by input order, no side effects.
//
// Candidates whose ingredient list matches any exclusion term as a
// case-insensitive substring are discarded outright and never chosen.
// Survivors score similarity + 1.5×pantry-overlap − time penalty, are
// stably sorted on that single composite score, then picked greedily:
// exact-title duplicates always skip, repeated primary tags skip until
// 70% of target slots are filled. Remaining slots backfill from the
// ranked list regardless of tag or title repeats.
func Select(candidates []recipe.Candidate, target int, pantry, exclusions []string) []recipe.Candidate {
	if target <= 0 || len(candidates) == 0 {
		return nil
	}

	pantryLower := lowerAll(pantry)
	exclusionsLower := lowerAll(exclusions)

	type scored struct {
		cand  recipe.Candidate
		score float64
	}

	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		names := lowerAll(c.IngredientNames())
		if matchesAny(names, exclusionsLower) {
			continue
		}

		overlap := 0
		for _, name := range names {
			for _, p := range pantryLower {
				if p != "" && strings.Contains(name, p) {
					overlap++
				}
			}
		}

		minutes := defaultTimeMinutes
		if c.TimeMinutes != nil {
			minutes = int(*c.TimeMinutes)
		}
		penalty := 0.0
		if minutes > timePenaltyFloor {
			penalty = timePenaltyRate * float64(minutes-timePenaltyFloor)
		}

		ranked = append(ranked, scored{
			cand:  c,
			score: c.Score + pantryOverlapWeight*float64(overlap) - penalty,
		})
	}

	// Single-key stable sort: input order is the only tiebreak.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	chosen := make([]recipe.Candidate, 0, target)
	picked := make([]bool, len(ranked))
	seenTitles := make(map[string]bool)
	seenTags := make(map[string]bool)

	for i, r := range ranked {
		if len(chosen) >= target {
			break
		}
		title := strings.ToLower(strings.TrimSpace(r.cand.Title))
		tag := r.cand.PrimaryTag()

		if title != "" && seenTitles[title] {
			continue
		}
		if tag != "" && seenTags[tag] && float64(len(chosen)) < varietyShare*float64(target) {
			continue
		}

		chosen = append(chosen, r.cand)
		picked[i] = true
		if title != "" {
			seenTitles[title] = true
		}
		if tag != "" {
			seenTags[tag] = true
		}
	}

	// Backfill from the ranked list, de-duplication relaxed.
	for i, r := range ranked {
		if len(chosen) >= target {
			break
		}
		if !picked[i] {
			chosen = append(chosen, r.cand)
			picked[i] = true
		}
	}

	return chosen
}

func lowerAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.ToLower(s)
	}
	return out
}

// matchesAny reports whether any name contains any term as a substring.
// Deliberately aggressive ("ham" disqualifies "hamburger") to stay
// compatible with historical behavior.
func matchesAny(names, terms []string) bool {
	for _, name := range names {
		for _, term := range terms {
			if term != "" && strings.Contains(name, term) {
				return true
			}
		}
	}
	return false
}
