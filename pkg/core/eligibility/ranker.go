package eligibility

import (
	"sort"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// Ranker orders candidate guards for a shift by eligibility score
type Ranker struct {
	scorer    *Scorer
	histories map[string]model.GuardHistory
}

// NewRanker creates a Ranker. Guards missing from histories are scored with an empty history.
func NewRanker(scorer *Scorer, histories map[string]model.GuardHistory) *Ranker {
	return &Ranker{scorer: scorer, histories: histories}
}

// Rank scores every candidate, highest first. Only eligible guards are recommended.
// Ties keep the candidates' input order.
func (r *Ranker) Rank(candidates []model.Guard, shift model.Shift) ([]model.RankedGuard, error) {
	ranked := make([]model.RankedGuard, 0, len(candidates))

	for _, guard := range candidates {
		result, err := r.scorer.Score(guard, shift, r.histories[guard.ID])
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, model.RankedGuard{
			Guard:       guard,
			Score:       float64(result.Score),
			Recommended: result.Eligible,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked, nil
}
