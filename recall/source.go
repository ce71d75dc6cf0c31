// Package recall 实现候选生成：相似邻居检索、邻居偏好聚合、热门补底召回。
package recall

import (
	"context"

	"github.com/moodyhq/placerec/core"
)

// Source 表示一个可复用的召回源（邻居聚合/热门/...）。
// 可以把它理解为“可并发 fan-out 的策略单元”。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
