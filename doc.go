// Package placerec 是一个场所推荐引擎（Place Recommender）。
//
// 设计要点：
// - 用户协同过滤: 混合画像相似度 → k 近邻 → 邻居偏好聚合 → 分页与热门补底
// - Pipeline 可扩展: 聚合后的候选通过 Node 串联（Filter → ReRank → PostProcess）处理
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 缓存友好: 邻居与聚合结果按用户分两个 TTL 命名空间缓存，写入后显式失效
package placerec

import "github.com/moodyhq/placerec/pipeline"

// 轻量 facade：便于用户直接 import "placerec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
