package recall

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/moodyhq/placerec/core"
	"github.com/moodyhq/placerec/pipeline"
	"github.com/moodyhq/placerec/pkg/utils"
)

// Hot 是热门地点召回/补底源。
//   - 如果配置了 KeyValueStore，优先从有序集合读取榜单（member=place_id, score=likes）
//   - 否则走 Repository.GetTopPlaces（likes 降序）
//
// 同时承担两个角色：
//   - 引擎补底（backfill）：TopPlaces 带个性化二次排序与标签过滤
//   - Pipeline/Fanout 召回源：实现 Source 与 Node 接口
type Hot struct {
	Repo   core.Repository
	Store  core.KeyValueStore
	Key    string         // zset key，例如 "hot:places"
	Logger zerolog.Logger // 零值静默
}

func (r *Hot) Name() string        { return "recall.hot" }
func (r *Hot) Kind() pipeline.Kind { return pipeline.KindRecall }

// TopPlaces 返回 [offset, offset+limit) 的全局热门地点，并做两步个性化：
//  1. 片内按请求用户自己的交互次数二次降序（更熟悉的优先）
//  2. 若用户有兴趣标签，优先保留标签有交集的地点；
//     过滤结果为空时忽略过滤，使用未过滤集合（绝不因过滤返回空）
func (r *Hot) TopPlaces(ctx context.Context, user *core.User, offset, limit int) ([]*core.Place, error) {
	if limit <= 0 {
		return nil, nil
	}

	places, err := r.fetch(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 || user == nil {
		return places, nil
	}

	// 片内个性化：自有交互次数降序，同次数保持 likes 序（稳定排序）
	sort.SliceStable(places, func(i, j int) bool {
		return user.MetricFor(places[i].ID) > user.MetricFor(places[j].ID)
	})

	tags := user.InterestTags()
	if len(tags) == 0 {
		return places, nil
	}

	filtered := make([]*core.Place, 0, len(places))
	for _, place := range places {
		if place.TagOverlap(tags) > 0 {
			filtered = append(filtered, place)
		}
	}
	if len(filtered) == 0 {
		return places, nil
	}
	return filtered, nil
}

// fetch 拉取一片全局榜单：Store zset 优先，Repository 兜底。
func (r *Hot) fetch(ctx context.Context, offset, limit int) ([]*core.Place, error) {
	if r.Store != nil && r.Key != "" {
		members, err := r.Store.ZRange(ctx, r.Key, int64(offset), int64(offset+limit-1))
		if err != nil {
			// zset 不可用时退回 Repository；错误要可观测，key 配错不能静默
			r.Logger.Warn().Err(err).Str("key", r.Key).Msg("hot zset read failed, falling back to repository")
		} else if len(members) > 0 {
			places := make([]*core.Place, 0, len(members))
			for _, placeID := range members {
				place, err := r.Repo.GetPlaceByID(ctx, placeID)
				if err != nil || place == nil {
					continue
				}
				places = append(places, place)
			}
			return places, nil
		}
	}
	return r.Repo.GetTopPlaces(ctx, offset, limit)
}

// Process 实现 Node 接口，直接调用 Recall。
func (r *Hot) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口：返回热门头部（默认前 100）作为候选。
func (r *Hot) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	var user *core.User
	if rctx != nil {
		user = rctx.User
	}

	places, err := r.TopPlaces(ctx, user, 0, 100)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(places))
	for _, place := range places {
		it := core.NewItem(place.ID)
		it.Score = float64(place.Likes)
		it.PutMeta("name", place.Name)
		it.PutMeta("likes", place.Likes)
		it.PutLabel("recall_source", utils.Label{Value: "hot", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
