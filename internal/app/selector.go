package app

import (
	"math/rand"
	"sort"

	"rich-trivia-service/internal/domain"
)

// SelectSequence builds the play sequence for one game session: the catalog
// is partitioned by level and one question is drawn uniformly at random from
// each level's group, concatenated in ascending level order.
// The random source is injected so callers can make the draw deterministic.
func SelectSequence(catalog []domain.Question, rnd *rand.Rand) ([]domain.Question, error) {
	if len(catalog) == 0 {
		return nil, domain.ErrCatalogEmpty
	}

	groups := make(map[int][]domain.Question)
	for _, q := range catalog {
		groups[q.Level] = append(groups[q.Level], q)
	}

	levels := make([]int, 0, len(groups))
	for level := range groups {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	sequence := make([]domain.Question, 0, len(levels))
	for _, level := range levels {
		group := groups[level]
		sequence = append(sequence, group[rnd.Intn(len(group))])
	}
	return sequence, nil
}
