package recall

import (
	"sort"

	"github.com/moodyhq/placerec/core"
	"github.com/moodyhq/placerec/pkg/utils"
)

// Aggregator 把邻居们的交互历史合并为带分排名的候选地点列表（u2u → u2i）。
//
// 默认口径：score[place] = Σ interactions（跨邻居求和，不按相似度加权）。
// WeightBySimilarity 打开后改为 Σ(similarity · interactions)，
// 让更相似的邻居话语权更大。
type Aggregator struct {
	WeightBySimilarity bool
}

// Aggregate 返回按累计分降序的候选 Item 列表，无重复，不做截断
// （分页是调用方的职责）。同分按 place_id 升序保证确定性。
func (a *Aggregator) Aggregate(neighbors []Neighbor) []*core.Item {
	if len(neighbors) == 0 {
		return nil
	}

	totals := make(map[string]float64)
	for _, neighbor := range neighbors {
		if neighbor.User == nil {
			continue
		}
		for _, metric := range neighbor.User.Metrics {
			if metric.Interactions <= 0 {
				continue
			}
			weight := 1.0
			if a.WeightBySimilarity {
				weight = neighbor.Score
			}
			totals[metric.PlaceID] += weight * float64(metric.Interactions)
		}
	}

	out := make([]*core.Item, 0, len(totals))
	for placeID, total := range totals {
		it := core.NewItem(placeID)
		it.Score = total
		it.PutLabel("recall_source", utils.Label{Value: "neighbors", Source: "recall"})
		out = append(out, it)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}
