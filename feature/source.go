// Package feature 提供用户画像特征的补全：从在线特征服务（Feast）
// 拉取人口学特征，在打分前充实仓储侧不完整的画像。
package feature

import (
	"context"

	"github.com/moodyhq/placerec/core"
	"github.com/moodyhq/placerec/pkg/conv"
)

// Source 是用户特征来源的领域接口。
// 定义在使用方，基础设施实现（Feast gRPC、HTTP、测试 fake）。
type Source interface {
	// UserFeatures 返回某用户的在线特征（短名 -> 值），
	// 约定短名：age / gender / music_genre / profile。
	UserFeatures(ctx context.Context, userID string) (map[string]any, error)

	// Close 释放连接资源
	Close() error
}

// Enrich 把特征值应用到用户画像的空缺字段上：仓储侧已有的值不被覆盖。
func Enrich(user *core.User, features map[string]any) {
	if user == nil || len(features) == 0 {
		return
	}

	if user.Age == 0 {
		if age, ok := conv.ToInt(features["age"]); ok {
			user.Age = age
		}
	}
	if user.Gender == "" {
		if gender, ok := conv.ToString(features["gender"]); ok {
			user.Gender = gender
		}
	}
	if user.MusicGenre == "" {
		if genre, ok := conv.ToString(features["music_genre"]); ok {
			user.MusicGenre = genre
		}
	}
	if user.Profile == "" || user.Profile == core.DefaultProfile {
		if profile, ok := conv.ToString(features["profile"]); ok && profile != "" {
			user.Profile = profile
		}
	}
}
