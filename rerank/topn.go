// Package rerank 实现候选列表的重排与截断。
package rerank

import (
	"context"

	"github.com/moodyhq/placerec/core"
	"github.com/moodyhq/placerec/pipeline"
)

// TopN 是一个 Top-N 截断节点，用于限制候选数量。
// 通常挂在过滤之后、分页之前，控制后续解析地点的成本。
type TopN struct {
	// N 要保留的候选数量。N <= 0 或候选不足 N 时不截断。
	N int
}

func (n *TopN) Name() string {
	return "rerank.topn"
}

func (n *TopN) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopN) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
