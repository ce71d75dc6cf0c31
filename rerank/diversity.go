package rerank

import (
	"context"

	"github.com/moodyhq/placerec/core"
	"github.com/moodyhq/placerec/pipeline"
)

// Diversity 是一个简单的多样性重排：按标签去重（保留首个出现的标签）。
// 标签来源优先级：
//   - label["tag"].Value
//   - meta["tag"] (string)
type Diversity struct {
	LabelKey string // 默认 "tag"
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.LabelKey
	if key == "" {
		key = "tag"
	}

	seen := make(map[string]bool, 32)
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}

		tag := ""
		if it.Labels != nil {
			if lbl, ok := it.Labels[key]; ok {
				tag = lbl.Value
			}
		}
		if tag == "" && it.Meta != nil {
			if v, ok := it.Meta[key]; ok {
				if s, ok := v.(string); ok {
					tag = s
				}
			}
		}

		if tag == "" {
			out = append(out, it)
			continue
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, it)
	}

	return out, nil
}
