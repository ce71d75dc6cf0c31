// Package tuning 提供离线权重调参工具，不在服务路径上。
package tuning

import (
	"fmt"
	"math"

	"github.com/moodyhq/placerec/core"
	"github.com/moodyhq/placerec/similarity"
)

// LabeledPair 是一条标注样本：一对用户与其人工标注的相似度。
type LabeledPair struct {
	A          *core.User
	B          *core.User
	Similarity float64
}

// Result 是一次调参的结果。
type Result struct {
	Weights similarity.Weights
	// SSE 是该权重下全部样本的平方误差和。
	SSE float64
}

// GridSearch 在总和为 1 的权重格点上穷举，返回平方误差和最小的权重组合。
// step 是格点步长（如 0.05），必须能整除 1；样本或步长非法时报错。
//
// 误差并列时保留先枚举到的组合，枚举顺序固定，结果可复现。
func GridSearch(pairs []LabeledPair, step float64) (Result, error) {
	if len(pairs) == 0 {
		return Result{}, fmt.Errorf("tuning: no labeled pairs")
	}
	if step <= 0 || step > 1 {
		return Result{}, fmt.Errorf("tuning: invalid step %v", step)
	}
	units := int(math.Round(1 / step))
	if math.Abs(float64(units)*step-1) > 1e-9 {
		return Result{}, fmt.Errorf("tuning: step %v does not divide 1", step)
	}

	// 逐样本预计算各维相似度，格点循环里只做加权求和
	features := make([][6]float64, len(pairs))
	for i, pair := range pairs {
		if pair.A == nil || pair.B == nil {
			return Result{}, fmt.Errorf("tuning: pair %d has nil user", i)
		}
		features[i] = featureVector(pair.A, pair.B)
	}

	best := Result{SSE: math.Inf(1)}
	enumerate(units, 6, make([]int, 6), func(grid []int) {
		w := similarity.Weights{
			Metrics:   float64(grid[0]) * step,
			Favorites: float64(grid[1]) * step,
			Age:       float64(grid[2]) * step,
			Genre:     float64(grid[3]) * step,
			Gender:    float64(grid[4]) * step,
			Tags:      float64(grid[5]) * step,
		}
		var sse float64
		for i, pair := range pairs {
			predicted := blend(w, features[i])
			diff := predicted - pair.Similarity
			sse += diff * diff
		}
		if sse < best.SSE {
			best = Result{Weights: w, SSE: sse}
		}
	})
	return best, nil
}

// enumerate 枚举 dims 维、非负、总和恰为 units 的全部格点。
func enumerate(units, dims int, acc []int, visit func([]int)) {
	idx := len(acc) - dims
	if dims == 1 {
		acc[idx] = units
		visit(acc)
		return
	}
	for v := 0; v <= units; v++ {
		acc[idx] = v
		enumerate(units-v, dims-1, acc, visit)
	}
}

// featureVector 返回一对用户的各维相似度，顺序与 Weights 字段一致。
func featureVector(a, b *core.User) [6]float64 {
	var genre, gender float64
	if a.MusicGenre == b.MusicGenre {
		genre = 1
	}
	if a.Gender == b.Gender {
		gender = 1
	}
	return [6]float64{
		similarity.MetricsSimilarity(a, b),
		similarity.FavoritesSimilarity(a, b),
		similarity.AgeSimilarity(a.Age, b.Age),
		genre,
		gender,
		similarity.TagsSimilarity(a, b),
	}
}

// blend 是与 Scorer 一致的归一化加权和。
func blend(w similarity.Weights, f [6]float64) float64 {
	total := w.Sum()
	if total <= 0 {
		return 0
	}
	weighted := w.Metrics*f[0] + w.Favorites*f[1] + w.Age*f[2] +
		w.Genre*f[3] + w.Gender*f[4] + w.Tags*f[5]
	return weighted / total
}
