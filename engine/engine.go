// Package engine 是推荐编排层：快照管理、邻居/聚合缓存、分页与补底。
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/moodyhq/placerec/cache"
	"github.com/moodyhq/placerec/core"
	"github.com/moodyhq/placerec/feature"
	"github.com/moodyhq/placerec/pipeline"
	"github.com/moodyhq/placerec/pkg/utils"
	"github.com/moodyhq/placerec/recall"
	"github.com/moodyhq/placerec/similarity"
)

// Engine 是推荐引擎的编排器。
//
// 状态与共享策略：
//   - 用户快照在构造时全量加载一次，作为邻居扫描的候选池；
//     Recommend 路径绝不原地修改快照，只有显式 Refresh 整体替换
//   - 目标用户画像每次请求从仓储实时读取（避免目标自身的陈旧性）
//   - 两个独立的缓存命名空间：邻居列表 / 聚合候选 ids，均为 TTL 惰性淘汰
//   - 缓存是唯一的共享可变结构，读写并发安全；
//     同一用户的并发填充允许 last-writer-wins
//
// 显式构造、依赖注入，一个进程一个实例，不做隐藏单例。
type Engine struct {
	repo   core.Repository
	cfg    Config
	logger zerolog.Logger

	finder     *recall.NeighborFinder
	aggregator *recall.Aggregator
	hot        *recall.Hot
	pipe       *pipeline.Pipeline
	profiles   feature.Source

	mu       sync.RWMutex
	snapshot []*core.User

	neighborCache *cache.TTL[[]recall.Neighbor]
	recCache      *cache.TTL[[]string]
}

// Option 是 Engine 的构造选项。
type Option func(*Engine)

// WithLogger 注入日志器。
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithPipeline 挂载聚合后的候选处理链（过滤/重排），在分页前执行。
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(e *Engine) { e.pipe = p }
}

// WithProfileSource 注入在线特征来源，打分前充实目标画像。
func WithProfileSource(src feature.Source) Option {
	return func(e *Engine) { e.profiles = src }
}

// WithHotStore 让补底召回走外部榜单 zset（member=place_id）。
func WithHotStore(kv core.KeyValueStore, key string) Option {
	return func(e *Engine) {
		e.hot.Store = kv
		e.hot.Key = key
	}
}

// New 构造引擎并加载全量用户快照。
func New(ctx context.Context, repo core.Repository, cfg Config, opts ...Option) (*Engine, error) {
	if repo == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: repository is required")
	}
	cfg = cfg.normalize()

	e := &Engine{
		repo:   repo,
		cfg:    cfg,
		logger: zerolog.Nop(),
		finder: &recall.NeighborFinder{
			Scorer:        similarity.NewScorer(cfg.Weights),
			SimilarityMin: cfg.SimilarityMin,
			K:             cfg.KNeighbors,
		},
		aggregator:    &recall.Aggregator{WeightBySimilarity: cfg.WeightBySimilarity},
		hot:           &recall.Hot{Repo: repo},
		neighborCache: cache.NewTTL[[]recall.Neighbor](cfg.TTL()),
		recCache:      cache.NewTTL[[]string](cfg.TTL()),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.hot.Logger = e.logger.With().Str("component", "recall.hot").Logger()
	e.logger = e.logger.With().Str("component", "engine").Logger()

	if err := e.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("load user snapshot: %w", err)
	}

	e.logger.Info().
		Int("users", len(e.snapshot)).
		Float64("similarity_min", cfg.SimilarityMin).
		Msg("recommendation engine initialized")
	return e, nil
}

// Refresh 重新全量加载用户快照（批量写入后由调用方显式触发）。
func (e *Engine) Refresh(ctx context.Context) error {
	users, err := e.repo.GetAllUsers(ctx)
	if err != nil {
		return err
	}
	snapshot := make([]*core.User, 0, len(users))
	for _, user := range users {
		if user == nil || user.ID == "" {
			e.logger.Warn().Msg("skipping malformed user row")
			continue
		}
		snapshot = append(snapshot, user)
	}

	e.mu.Lock()
	e.snapshot = snapshot
	e.mu.Unlock()
	return nil
}

// UserIDs 返回快照内的用户 ID 列表（预热器使用）。
func (e *Engine) UserIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.snapshot))
	for _, user := range e.snapshot {
		ids = append(ids, user.ID)
	}
	return ids
}

func (e *Engine) candidates() []*core.User {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

// Recommend 为用户计算一页推荐。
//
// 每次调用的状态机：
//  1. 实时读取目标画像；未知用户返回 ErrUserNotFound
//  2. 邻居解析：缓存命中复用，未命中扫描快照并回填
//  3. 聚合解析：缓存命中复用，未命中聚合邻居偏好（+可选 Pipeline）并回填
//  4. 分页切片并解析地点；解析失败的 id 跳过并记 warning
//  5. 不足一页时从热门补底（带个性化二次排序与标签过滤）
//  6. 为每条结果标注展示分：邻居相似度按交互次数的加权平均
func (e *Engine) Recommend(ctx context.Context, userID string, page, itemsPerPage, k int) ([]*core.Item, error) {
	if page < 0 {
		page = 0
	}
	if itemsPerPage <= 0 {
		itemsPerPage = e.cfg.ItemsPerPage
	}
	if k <= 0 {
		k = e.cfg.KNeighbors
	}

	user, err := e.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// 预期内情况，不按 error 级别记录
		e.logger.Debug().Str("user_id", userID).Msg("user not found")
		return nil, core.ErrUserNotFound
	}

	e.enrichProfile(ctx, user)

	log := e.logger.With().Str("user_id", userID).Logger()
	log.Info().Int("page", page).Int("items_per_page", itemsPerPage).Int("k", k).Msg("recommending")

	// 冷启动：无任何交互历史，整页走热门补底
	if len(user.Metrics) == 0 {
		log.Info().Msg("cold start, serving top places")
		return e.backfill(ctx, user, nil, page*itemsPerPage, itemsPerPage, nil)
	}

	neighbors := e.resolveNeighbors(user, k)
	ids, err := e.resolveAggregation(ctx, user, neighbors)
	if err != nil {
		return nil, err
	}

	start := page * itemsPerPage
	end := start + itemsPerPage
	if start > len(ids) {
		start = len(ids)
	}
	if end > len(ids) {
		end = len(ids)
	}

	out := make([]*core.Item, 0, itemsPerPage)
	for _, placeID := range ids[start:end] {
		place, err := e.repo.GetPlaceByID(ctx, placeID)
		if err != nil {
			return nil, err
		}
		if place == nil {
			// 数据漂移：metric 指向的地点已不存在，跳过不失败
			log.Warn().Str("place_id", placeID).Msg("recommended place no longer resolves")
			continue
		}
		out = append(out, e.resultItem(place, neighbors, "neighbors"))
	}

	if len(out) < itemsPerPage {
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			seen[id] = struct{}{}
		}
		// 补底偏移按去重后的榜单流计数：前面的页已经消费了
		// page*n - len(ids) 条存活条目，跳过它们保证翻页不回头
		skip := page*itemsPerPage - len(ids)
		if skip < 0 {
			skip = 0
		}
		return e.backfill(ctx, user, out, skip, itemsPerPage, seen)
	}
	return out, nil
}

// resolveNeighbors 解析邻居列表：缓存命中复用，未命中计算并回填。
func (e *Engine) resolveNeighbors(user *core.User, k int) []recall.Neighbor {
	if cached, ok := e.neighborCache.Get(user.ID); ok {
		return cached
	}

	finder := *e.finder
	finder.K = k
	neighbors := finder.Find(user, e.candidates())
	e.neighborCache.Set(user.ID, neighbors)
	return neighbors
}

// resolveAggregation 解析聚合候选 ids：缓存命中复用，未命中聚合并回填。
// 可选 Pipeline 在聚合后、缓存前执行；Pipeline 失败降级为未过滤候选。
func (e *Engine) resolveAggregation(ctx context.Context, user *core.User, neighbors []recall.Neighbor) ([]string, error) {
	if cached, ok := e.recCache.Get(user.ID); ok {
		return cached, nil
	}

	items := e.aggregator.Aggregate(neighbors)
	if e.pipe != nil && len(items) > 0 {
		rctx := &core.RecommendContext{UserID: user.ID, User: user}
		processed, err := e.pipe.Run(ctx, rctx, items)
		if err != nil {
			e.logger.Warn().Err(err).Str("user_id", user.ID).Msg("candidate pipeline failed, using raw aggregation")
		} else {
			items = processed
		}
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	e.recCache.Set(user.ID, ids)
	return ids, nil
}

// backfill 从热门补底到满页。
//
// 榜单先按 seen 去重形成存活流，再在流内跳过 skip 条（前面的页
// 已消费的部分），最后续满本页。偏移如果直接打在未去重的原始榜单
// 上，被 seen 跳过的条目不计入偏移，相邻补底页会重复。
func (e *Engine) backfill(ctx context.Context, user *core.User, out []*core.Item, skip, itemsPerPage int, seen map[string]struct{}) ([]*core.Item, error) {
	if seen == nil {
		seen = make(map[string]struct{})
	}
	for _, item := range out {
		seen[item.ID] = struct{}{}
	}

	cursor := 0
	for len(out) < itemsPerPage {
		batch, err := e.hot.TopPlaces(ctx, user, cursor, itemsPerPage)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			// 全局目录不足一页：尽力而为，不报错
			break
		}
		cursor += itemsPerPage

		for _, place := range batch {
			if len(out) >= itemsPerPage {
				break
			}
			if _, dup := seen[place.ID]; dup {
				continue
			}
			if skip > 0 {
				skip--
				continue
			}
			seen[place.ID] = struct{}{}

			var neighbors []recall.Neighbor
			if cached, ok := e.neighborCache.Get(user.ID); ok {
				neighbors = cached
			}
			item := e.resultItem(place, neighbors, "hot")
			item.PutLabel("backfill", utils.Label{Value: "true", Source: "backfill"})
			out = append(out, item)
		}
	}
	return out, nil
}

// resultItem 构建结果条目并标注展示分。
func (e *Engine) resultItem(place *core.Place, neighbors []recall.Neighbor, source string) *core.Item {
	item := core.NewItem(place.ID)
	item.Score = displayScore(place.ID, neighbors)
	item.PutMeta("name", place.Name)
	item.PutMeta("slug", place.Slug)
	item.PutMeta("likes", place.Likes)
	if len(place.Tags) > 0 {
		item.PutMeta("tags", place.Tags)
	}
	item.PutLabel("recall_source", utils.Label{Value: source, Source: "engine"})
	return item
}

// displayScore 是展示分：邻居相似度按交互次数加权的平均
// Σ(simᵢ·interᵢ) / Σ(interᵢ)；没有邻居碰过该地点时为 0.0。
func displayScore(placeID string, neighbors []recall.Neighbor) float64 {
	var weighted, total float64
	for _, neighbor := range neighbors {
		if neighbor.User == nil {
			continue
		}
		interactions := neighbor.User.MetricFor(placeID)
		if interactions <= 0 {
			continue
		}
		weighted += neighbor.Score * float64(interactions)
		total += float64(interactions)
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// enrichProfile 用在线特征补全画像空缺字段；特征服务故障只降级不失败。
func (e *Engine) enrichProfile(ctx context.Context, user *core.User) {
	if e.profiles == nil {
		return
	}
	features, err := e.profiles.UserFeatures(ctx, user.ID)
	if err != nil {
		e.logger.Warn().Err(err).Str("user_id", user.ID).Msg("profile feature fetch failed")
		return
	}
	feature.Enrich(user, features)
}

// ClearCache 使某用户在两个缓存命名空间的条目失效；
// userID 为空时清空全部（评分/交互写入后由调用方显式触发）。
func (e *Engine) ClearCache(userID string) {
	if userID == "" {
		e.logger.Info().Msg("clearing all caches")
		e.neighborCache.Clear()
		e.recCache.Clear()
		return
	}
	e.logger.Info().Str("user_id", userID).Msg("clearing user cache")
	e.neighborCache.Delete(userID)
	e.recCache.Delete(userID)
}

// CachedUsers 返回当前有未过期缓存条目的用户集合（观测用）。
func (e *Engine) CachedUsers() []string {
	seen := make(map[string]struct{})
	for _, key := range e.neighborCache.Keys() {
		seen[key] = struct{}{}
	}
	for _, key := range e.recCache.Keys() {
		seen[key] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids
}
