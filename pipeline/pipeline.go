package pipeline

import (
	"context"

	"github.com/moodyhq/placerec/core"
)

// Pipeline 把候选集处理逻辑拆成可组合的 Node 链：
// 聚合产出的候选 items 依次流经过滤、重排、后处理等阶段。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
