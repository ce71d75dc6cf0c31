package builders

import (
	"fmt"
	"time"

	"github.com/moodyhq/placerec/config"
	"github.com/moodyhq/placerec/core"
	"github.com/moodyhq/placerec/filter"
	"github.com/moodyhq/placerec/pipeline"
	"github.com/moodyhq/placerec/pkg/conv"
	"github.com/moodyhq/placerec/recall"
	"github.com/moodyhq/placerec/rerank"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("filter.visited", BuildVisitedNode)
	config.Register("filter.expr", BuildExprNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

// UseRepository 注册需要数据依赖的 Node 类型（recall.hot、recall.fanout）。
// 仓储无法从配置文件构建，由入口显式注入后这些类型才可用；kv 可为 nil。
func UseRepository(repo core.Repository, kv core.KeyValueStore) {
	config.Register("recall.hot", func(cfg map[string]any) (pipeline.Node, error) {
		return buildHotSource(repo, kv, cfg), nil
	})
	config.Register("recall.fanout", func(cfg map[string]any) (pipeline.Node, error) {
		return BuildFanoutNode(repo, kv, cfg)
	})
}

func buildHotSource(repo core.Repository, kv core.KeyValueStore, cfg map[string]any) *recall.Hot {
	hot := &recall.Hot{Repo: repo}
	if key := conv.ConfigGet(cfg, "store_key", ""); key != "" && kv != nil {
		hot.Store = kv
		hot.Key = key
	}
	return hot
}

func BuildFanoutNode(repo core.Repository, kv core.KeyValueStore, cfg map[string]any) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]any)
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}
	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]any)
		if !ok {
			continue
		}
		sourceType := conv.ConfigGet(sourceMap, "type", "")
		switch sourceType {
		case "hot":
			sources = append(sources, buildHotSource(repo, kv, sourceMap))
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}
	fanout := &recall.Fanout{
		Sources:       sources,
		Dedup:         conv.ConfigGet(cfg, "dedup", true),
		MergeStrategy: conv.ConfigGet(cfg, "merge_strategy", ""),
	}
	if sec := conv.ConfigGetInt64(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	if n := conv.ConfigGetInt64(cfg, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = int(n)
	}
	return fanout, nil
}

func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "visited":
			filters = append(filters, &filter.Visited{})
		case "expr":
			filters = append(filters, &filter.Expr{
				Expression: conv.ConfigGet(filterMap, "expression", ""),
			})
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.Node{Filters: filters}, nil
}

func BuildVisitedNode(cfg map[string]any) (pipeline.Node, error) {
	return &filter.Node{Filters: []filter.Filter{&filter.Visited{}}}, nil
}

func BuildExprNode(cfg map[string]any) (pipeline.Node, error) {
	expression := conv.ConfigGet(cfg, "expression", "")
	if expression == "" {
		return nil, fmt.Errorf("expression not found")
	}
	return &filter.Node{Filters: []filter.Filter{&filter.Expr{Expression: expression}}}, nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", 0)
	if n <= 0 {
		return nil, fmt.Errorf("n not found or invalid")
	}
	return &rerank.TopN{N: int(n)}, nil
}

func BuildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	labelKey := conv.ConfigGet(cfg, "label_key", "tag")
	if labelKey == "" {
		labelKey = "tag"
	}
	return &rerank.Diversity{LabelKey: labelKey}, nil
}
