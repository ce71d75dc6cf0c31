package filter

import (
	"context"

	"github.com/moodyhq/placerec/core"
)

// Visited 剔除目标用户已经交互过的地点：推荐的价值在于“没去过的”。
// 默认不在引擎主链路挂载（聚合口径保留已访问地点），通过 Pipeline 配置启用。
type Visited struct{}

func (f *Visited) Name() string {
	return "filter.visited"
}

func (f *Visited) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	if rctx == nil || rctx.User == nil || item == nil {
		return false, nil
	}
	return rctx.User.MetricFor(item.ID) > 0, nil
}
