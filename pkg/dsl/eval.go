// Package dsl 是基于 CEL (Common Expression Language) 的规则解释器，
// 用于配置驱动的候选过滤与策略判断。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/moodyhq/placerec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("user", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	if celEnv == nil && err == nil {
		err = fmt.Errorf("cel env not initialized")
	}
	return celEnv, err
}

// Eval 对单个候选执行 CEL 布尔表达式。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：label.recall_source == "hot" / item.score > 0.7
//   - 逻辑：label.recall_source == "hot" && item.score > 100.0
//   - 用户侧：user.age < 30 / user.music_genre == "rock"
//   - 包含："coffee" in item.meta.tags
//
// 注意：访问不存在的 key 会报错，存在性判断请使用 label.key != null。
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
	env  *cel.Env
}

// NewEval 创建一个新的 DSL 解释器。
func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		item: item,
		rctx: rctx,
		env:  env,
	}
}

// Evaluate 解析并执行表达式，返回布尔结果。空表达式恒为 true。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	if e.env == nil {
		return false, fmt.Errorf("cel env unavailable")
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]any {
	labels := make(map[string]any)
	labelAccessor := make(map[string]any)
	if e.item != nil {
		for k, v := range e.item.Labels {
			labels[k] = map[string]any{
				"value":  v.Value,
				"source": v.Source,
			}
			// label.recall_source 直接取 value，兼容简写
			labelAccessor[k] = v.Value
		}
	}

	item := map[string]any{}
	if e.item != nil {
		item = map[string]any{
			"id":     e.item.ID,
			"score":  e.item.Score,
			"meta":   e.item.Meta,
			"labels": labels,
		}
	}

	user := map[string]any{}
	if e.rctx != nil && e.rctx.User != nil {
		u := e.rctx.User
		tags := make([]string, 0)
		for tag := range u.InterestTags() {
			tags = append(tags, tag)
		}
		user = map[string]any{
			"id":          u.ID,
			"age":         u.Age,
			"gender":      u.Gender,
			"music_genre": u.MusicGenre,
			"tags":        tags,
		}
	}

	return map[string]any{
		"item":  item,
		"label": labelAccessor,
		"user":  user,
	}
}
