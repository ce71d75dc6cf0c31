package filter

import (
	"context"

	"github.com/moodyhq/placerec/core"
	"github.com/moodyhq/placerec/pkg/dsl"
)

// Expr 是 CEL 表达式过滤器：表达式命中（true）的候选被剔除。
//
// 示例：
//   - `item.score < 1.0`          → 剔除低分候选
//   - `label.recall_source == "hot" && user.age < 18` → 未成年人不出热门补底
type Expr struct {
	// Expression 是 CEL 布尔表达式；为空时不过滤任何候选。
	Expression string
}

func (f *Expr) Name() string {
	return "filter.expr"
}

func (f *Expr) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	if f.Expression == "" || item == nil {
		return false, nil
	}
	return dsl.NewEval(item, rctx).Evaluate(f.Expression)
}
