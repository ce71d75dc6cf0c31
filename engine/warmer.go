package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Warmer 周期性地为全量用户预热推荐缓存，
// 保证热路径上的请求大概率命中缓存。
//
// 生命周期由传入的 context 控制；单个用户的预热失败只记日志，
// 不会中断整轮，也不会终止循环。
type Warmer struct {
	Engine *Engine

	// Interval 为 0 时使用配置里的预热间隔。
	Interval time.Duration
	// Concurrency 为 0 时使用配置里的并发度。
	Concurrency int
}

// Run 阻塞运行预热循环，直到 ctx 取消。启动时立即跑一轮。
func (w *Warmer) Run(ctx context.Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = w.Engine.cfg.Warmer.Interval()
	}

	w.warmAll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Engine.Refresh(ctx); err != nil {
				w.Engine.logger.Warn().Err(err).Msg("snapshot refresh failed, warming stale snapshot")
			}
			w.warmAll(ctx)
		}
	}
}

// warmAll 并发预热快照内的全部用户。
func (w *Warmer) warmAll(ctx context.Context) {
	concurrency := w.Concurrency
	if concurrency <= 0 {
		concurrency = w.Engine.cfg.Warmer.Concurrency
	}

	ids := w.Engine.UserIDs()
	started := time.Now()
	w.Engine.logger.Info().Int("users", len(ids)).Msg("cache warm-up started")

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	for _, userID := range ids {
		userID := userID
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			if _, err := w.Engine.Recommend(groupCtx, userID, 0, 0, 0); err != nil {
				w.Engine.logger.Warn().Err(err).Str("user_id", userID).Msg("warm-up failed for user")
			}
			// 失败已记录，返回 nil 保证整轮继续
			return nil
		})
	}
	_ = group.Wait()

	w.Engine.logger.Info().
		Int("users", len(ids)).
		Dur("elapsed", time.Since(started)).
		Msg("cache warm-up finished")
}
