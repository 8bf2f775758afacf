package search

import (
	"sort"
	"strings"
	"time"
)

// MaxTimeDrift is how far a candidate's slot may sit from the requested time
// before it is filtered out. A drift of exactly MaxTimeDrift is still kept.
const MaxTimeDrift = 30 * time.Minute

// timeBonusSlope divides the drift in milliseconds so the proximity bonus
// decays linearly from 10 at zero drift to 0 at MaxTimeDrift.
const timeBonusSlope = 180000.0

// Dedup merges candidates that share a DedupKey, preserving the arrival order
// of first appearances. Field-level choices inside a merged record depend on
// arrival order (first non-empty wins); the resulting set does not.
func Dedup(candidates []RestaurantOption) []RestaurantOption {
	byKey := make(map[string]int, len(candidates))
	out := make([]RestaurantOption, 0, len(candidates))
	for _, c := range candidates {
		k := c.DedupKey()
		if i, ok := byKey[k]; ok {
			out[i].Merge(c)
			continue
		}
		byKey[k] = len(out)
		out = append(out, c)
	}
	return out
}

// Admissible reports whether a candidate survives the hard filters: cuisine
// compatibility and the 30-minute drift window.
func Admissible(intent QueryIntent, c RestaurantOption) bool {
	if intent.Cuisine != "" && c.Cuisine != "" && !cuisineRelated(intent.Cuisine, c.Cuisine) {
		return false
	}
	return drift(intent.DateTime, c.DateTime) <= MaxTimeDrift
}

// Score computes the ranking score for one candidate. Scores live in a side
// map during ranking and are never attached to RestaurantOption.
func Score(intent QueryIntent, c RestaurantOption) float64 {
	s := 10.0
	if locationMatches(intent.Location, c.Location) {
		s = 30.0
	}
	if c.Rating != nil {
		s += *c.Rating * 8
	}
	if intent.Cuisine != "" && c.Cuisine != "" {
		switch {
		case strings.EqualFold(strings.TrimSpace(intent.Cuisine), strings.TrimSpace(c.Cuisine)):
			s += 20
		case cuisineRelated(intent.Cuisine, c.Cuisine):
			s += 10
		}
	}
	s += 5 * float64(vibeOverlap(intent.Vibes, c.VibeTags))
	if d := drift(intent.DateTime, c.DateTime); d <= MaxTimeDrift {
		s += 10 - float64(d.Milliseconds())/timeBonusSlope
	}
	return s
}

// Rank runs the full post-fanout pipeline: dedup, filter, score, sort, and
// truncate to limit. The sort is stable so tied scores keep arrival order.
func Rank(intent QueryIntent, candidates []RestaurantOption, limit int) []RestaurantOption {
	merged := Dedup(candidates)

	kept := merged[:0]
	for _, c := range merged {
		if Admissible(intent, c) {
			kept = append(kept, c)
		}
	}

	scores := make(map[string]float64, len(kept))
	for _, c := range kept {
		scores[c.DedupKey()] = Score(intent, c)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return scores[kept[i].DedupKey()] > scores[kept[j].DedupKey()]
	})

	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

func drift(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d
}

func locationMatches(want, have string) bool {
	w := strings.ToLower(strings.TrimSpace(want))
	h := strings.ToLower(strings.TrimSpace(have))
	if w == "" || h == "" {
		return false
	}
	return strings.Contains(w, h) || strings.Contains(h, w)
}

func cuisineRelated(a, b string) bool {
	x := strings.ToLower(strings.TrimSpace(a))
	y := strings.ToLower(strings.TrimSpace(b))
	if x == "" || y == "" {
		return false
	}
	return strings.Contains(x, y) || strings.Contains(y, x)
}

func vibeOverlap(want, have []string) int {
	n := 0
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(strings.TrimSpace(w), strings.TrimSpace(h)) {
				n++
				break
			}
		}
	}
	return n
}
