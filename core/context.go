package core

import "github.com/moodyhq/placerec/pkg/utils"

// RecommendContext 承载一次推荐请求的用户与场景信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string

	// User 是目标用户画像（引擎在编排入口解析好后注入）
	User *User

	// Labels 是用户级标签，可驱动 Pipeline 行为（新用户、重度用户等）
	Labels map[string]utils.Label

	// Params 请求级上下文参数（page、items_per_page、k 等由引擎内部持有，
	// 这里只放策略/过滤可能用到的附加参数）
	Params map[string]any
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
