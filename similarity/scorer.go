// Package similarity 实现用户-用户相似度打分：多路加权特征相似度的归一化混合。
package similarity

import (
	"math"

	"github.com/moodyhq/placerec/core"
)

// Weights 是各路特征相似度的显式权重配置。
//
// 设计要点：
//   - 显式配置对象，构造时注入 Scorer，不是进程级全局变量
//   - 权重按占比归一化（blend = Σ wᵢ·simᵢ / Σ wᵢ），不要求和恰为 1.0
//   - 权重为 0 的特征不参与混合（Favorites 默认关闭）
type Weights struct {
	Metrics   float64 `yaml:"metrics" json:"metrics"`
	Favorites float64 `yaml:"favorites" json:"favorites"`
	Age       float64 `yaml:"age" json:"age"`
	Genre     float64 `yaml:"genre" json:"genre"`
	Gender    float64 `yaml:"gender" json:"gender"`
	Tags      float64 `yaml:"tags" json:"tags"`
}

// DefaultWeights 返回默认权重：交互向量为主信号，人口学与标签为辅。
func DefaultWeights() Weights {
	return Weights{
		Metrics:   0.65,
		Favorites: 0,
		Age:       0.05,
		Genre:     0.15,
		Gender:    0.05,
		Tags:      0.10,
	}
}

// Sum 返回权重总和，用于归一化。
func (w Weights) Sum() float64 {
	return w.Metrics + w.Favorites + w.Age + w.Genre + w.Gender + w.Tags
}

// Scorer 计算两个用户画像的混合相似度。
// 纯函数：同一对画像输出恒定，可用于排序；分数落在 [0, 1]。
type Scorer struct {
	Weights Weights
}

// NewScorer 创建 Scorer；权重总和非正时回退到默认权重。
func NewScorer(w Weights) *Scorer {
	if w.Sum() <= 0 {
		w = DefaultWeights()
	}
	return &Scorer{Weights: w}
}

// Score 返回 a、b 的混合相似度。
// 各路分量的零值保护（空交集、零范数、双空集合）都落在分量内部，
// 此处只做加权归一，不会产生 NaN。
func (s *Scorer) Score(a, b *core.User) float64 {
	w := s.Weights
	total := w.Sum()
	if total <= 0 {
		return 0
	}

	var blend float64
	if w.Metrics > 0 {
		blend += w.Metrics * MetricsSimilarity(a, b)
	}
	if w.Favorites > 0 {
		blend += w.Favorites * FavoritesSimilarity(a, b)
	}
	if w.Age > 0 {
		blend += w.Age * AgeSimilarity(a.Age, b.Age)
	}
	if w.Genre > 0 && a.MusicGenre == b.MusicGenre {
		blend += w.Genre
	}
	if w.Gender > 0 && a.Gender == b.Gender {
		blend += w.Gender
	}
	if w.Tags > 0 {
		blend += w.Tags * TagsSimilarity(a, b)
	}
	return blend / total
}

// MetricsSimilarity 是两个用户交互向量的余弦相似度，
// 限定在双方都交互过的地点集合上。空交集或零范数时为 0.0（不产生 NaN）。
func MetricsSimilarity(a, b *core.User) float64 {
	metricsA := a.MetricsByPlace()
	metricsB := b.MetricsByPlace()

	var dot, normA, normB float64
	for placeID, countA := range metricsA {
		countB, ok := metricsB[placeID]
		if !ok {
			continue
		}
		dot += float64(countA) * float64(countB)
		normA += float64(countA) * float64(countA)
		normB += float64(countB) * float64(countB)
	}
	if dot == 0 {
		return 0
	}
	norm := math.Sqrt(normA) * math.Sqrt(normB)
	if norm == 0 {
		return 0
	}
	return dot / norm
}

// FavoritesSimilarity 是收藏集合指示向量的余弦相似度：
// |A∩B| / sqrt(|A|·|B|)。任一集合为空时为 0.0。
func FavoritesSimilarity(a, b *core.User) float64 {
	favA := a.FavoriteSet()
	favB := b.FavoriteSet()
	if len(favA) == 0 || len(favB) == 0 {
		return 0
	}

	common := 0
	for placeID := range favA {
		if _, ok := favB[placeID]; ok {
			common++
		}
	}
	if common == 0 {
		return 0
	}
	return float64(common) / math.Sqrt(float64(len(favA))*float64(len(favB)))
}

// AgeSimilarity 为 1 - |Δage|/100，并截断到 [0, 1]，
// 避免极端年龄差产生负贡献。
func AgeSimilarity(ageA, ageB int) float64 {
	const maxAgeDifference = 100.0
	sim := 1 - math.Abs(float64(ageA-ageB))/maxAgeDifference
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// TagsSimilarity 是兴趣标签集合的 Jaccard 指数：|交|/|并|。
// 双方都无标签时为 0.0。
func TagsSimilarity(a, b *core.User) float64 {
	tagsA := a.InterestTags()
	tagsB := b.InterestTags()
	if len(tagsA) == 0 && len(tagsB) == 0 {
		return 0
	}

	intersection := 0
	for tag := range tagsA {
		if _, ok := tagsB[tag]; ok {
			intersection++
		}
	}
	union := len(tagsA) + len(tagsB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
