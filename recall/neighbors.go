package recall

import (
	"sort"

	"github.com/moodyhq/placerec/core"
	"github.com/moodyhq/placerec/similarity"
)

// Neighbor 是被选中的相似用户及其相似度分数。
type Neighbor struct {
	User  *core.User
	Score float64
}

// NeighborFinder 在全量用户快照上做 k 近邻挑选（User-based CF 的 u2u 步骤）。
//
// 算法流程：
//  1. 扫描候选（排除目标自身）
//  2. 逐个计算混合相似度
//  3. 丢弃 score <= SimilarityMin 的候选
//  4. 按分数降序排序，同分按 user_id 升序保证确定性
//  5. 取前 K 个
//
// 每次调用 O(N)（N 为常驻用户量），由上层缓存摊薄。
type NeighborFinder struct {
	Scorer *similarity.Scorer

	// SimilarityMin 是入选的相似度下界（严格大于）。<= 0 时使用默认 0.1。
	SimilarityMin float64

	// K 是返回的邻居数上限。<= 0 时使用默认 5。
	K int
}

const (
	defaultSimilarityMin = 0.1
	defaultK             = 5
)

// Find 返回 target 在 candidates 中的 Top-K 相似邻居。
// target 从不出现在自己的邻居列表里。
func (f *NeighborFinder) Find(target *core.User, candidates []*core.User) []Neighbor {
	if target == nil || len(candidates) == 0 {
		return nil
	}

	scorer := f.Scorer
	if scorer == nil {
		scorer = similarity.NewScorer(similarity.DefaultWeights())
	}

	minSim := f.SimilarityMin
	if minSim <= 0 {
		minSim = defaultSimilarityMin
	}

	k := f.K
	if k <= 0 {
		k = defaultK
	}

	neighbors := make([]Neighbor, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate == nil || candidate.ID == target.ID {
			continue
		}
		score := scorer.Score(target, candidate)
		if score > minSim {
			neighbors = append(neighbors, Neighbor{User: candidate, Score: score})
		}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Score != neighbors[j].Score {
			return neighbors[i].Score > neighbors[j].Score
		}
		return neighbors[i].User.ID < neighbors[j].User.ID
	})

	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}
