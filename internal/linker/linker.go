// Package linker matches entities across two source systems that share
// no reliable key. Matching runs in strict priority order: ordinal
// position, exact name, fuzzy name, manual override table. Every input
// appears in the output exactly once, so no native id is ever paired
// twice.
package linker

import (
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultThreshold is the minimum token-sort ratio (0-100) for a fuzzy
// name pair to be accepted.
const DefaultThreshold = 80

// Summary is the view of an entity the linker matches on.
type Summary struct {
	NativeID string
	Name     string
	Position int // 1-based ordinal within the parent workout
}

// Pair links one entity from each side. A nil side means the entity
// found no partner.
type Pair struct {
	Left  *string
	Right *string
}

// Matched reports whether both sides of the pair are present.
func (p Pair) Matched() bool { return p.Left != nil && p.Right != nil }

// Linker pairs entity summaries. The zero value is not usable; use New.
type Linker struct {
	threshold int
	overrides map[string]int
}

// Option configures a Linker.
type Option func(*Linker)

// WithThreshold overrides the fuzzy-match acceptance threshold.
func WithThreshold(t int) Option {
	return func(l *Linker) { l.threshold = t }
}

// WithOverrides replaces the embedded variant table. Each inner slice
// is a group of names known to denote the same exercise.
func WithOverrides(groups [][]string) Option {
	return func(l *Linker) { l.overrides = indexOverrides(groups) }
}

// New builds a Linker with the embedded override table and the default
// threshold.
func New(opts ...Option) *Linker {
	l := &Linker{
		threshold: DefaultThreshold,
		overrides: indexOverrides(embeddedOverrides()),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Link pairs the two sides. Inputs must be restricted to entities not
// yet linked; callers enforce idempotence by never resubmitting an
// already-linked entity. Duplicate names on one side are consumed in
// input order.
func (l *Linker) Link(left, right []Summary) []Pair {
	leftDone := make([]bool, len(left))
	rightDone := make([]bool, len(right))
	pairs := make([]Pair, 0, len(left)+len(right))

	take := func(li, ri int) {
		leftDone[li] = true
		rightDone[ri] = true
		pairs = append(pairs, Pair{Left: &left[li].NativeID, Right: &right[ri].NativeID})
	}

	// Pass 1: identical ordinal position.
	byPosition := make(map[int]int, len(right))
	for ri := range right {
		if _, dup := byPosition[right[ri].Position]; !dup {
			byPosition[right[ri].Position] = ri
		}
	}
	for li := range left {
		if ri, ok := byPosition[left[li].Position]; ok && !rightDone[ri] {
			take(li, ri)
		}
	}

	// Pass 2: exact name, case and whitespace insensitive. Duplicate
	// names queue up and are consumed in input order.
	byName := make(map[string][]int)
	for ri := range right {
		if rightDone[ri] {
			continue
		}
		key := normalizeName(right[ri].Name)
		byName[key] = append(byName[key], ri)
	}
	for li := range left {
		if leftDone[li] {
			continue
		}
		key := normalizeName(left[li].Name)
		if queue := byName[key]; len(queue) > 0 {
			take(li, queue[0])
			byName[key] = queue[1:]
		}
	}

	// Pass 3: fuzzy name, greedy highest score first, stable by input
	// order on ties. Anything below the threshold is never paired.
	type candidate struct {
		score  int
		li, ri int
	}
	var candidates []candidate
	for li := range left {
		if leftDone[li] {
			continue
		}
		for ri := range right {
			if rightDone[ri] {
				continue
			}
			score := fuzzy.TokenSortRatio(left[li].Name, right[ri].Name)
			if score >= l.threshold {
				candidates = append(candidates, candidate{score: score, li: li, ri: ri})
			}
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].li != candidates[j].li {
			return candidates[i].li < candidates[j].li
		}
		return candidates[i].ri < candidates[j].ri
	})
	for _, c := range candidates {
		if leftDone[c.li] || rightDone[c.ri] {
			continue
		}
		take(c.li, c.ri)
	}

	// Pass 4: manual override table of known vendor name variants.
	byGroup := make(map[int][]int)
	for ri := range right {
		if rightDone[ri] {
			continue
		}
		if group, ok := l.overrides[normalizeName(right[ri].Name)]; ok {
			byGroup[group] = append(byGroup[group], ri)
		}
	}
	for li := range left {
		if leftDone[li] {
			continue
		}
		group, ok := l.overrides[normalizeName(left[li].Name)]
		if !ok {
			continue
		}
		if queue := byGroup[group]; len(queue) > 0 {
			take(li, queue[0])
			byGroup[group] = queue[1:]
		}
	}

	// Whatever is left is emitted unmatched, left side first.
	for li := range left {
		if !leftDone[li] {
			pairs = append(pairs, Pair{Left: &left[li].NativeID})
		}
	}
	for ri := range right {
		if !rightDone[ri] {
			pairs = append(pairs, Pair{Right: &right[ri].NativeID})
		}
	}
	return pairs
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

func indexOverrides(groups [][]string) map[string]int {
	idx := make(map[string]int)
	for g, names := range groups {
		for _, name := range names {
			idx[normalizeName(name)] = g
		}
	}
	return idx
}
