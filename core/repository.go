package core

import "context"

// Repository 是引擎消费的仓储能力契约（抽象接口，不是线格式）。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层实现（SQL / Postgres / 内存 fixture）
//   - 引擎对仓储只有这一窄面依赖；路由、鉴权、落库引擎均为外部协作方
//   - 读路径不重试：仓储故障作为瞬时错误向调用方透传
type Repository interface {
	// GetUserByID 按 ID 读取用户画像；不存在时返回 (nil, nil)。
	GetUserByID(ctx context.Context, userID string) (*User, error)

	// GetAllUsers 全量扫描用户（引擎构造快照时调用一次）。
	GetAllUsers(ctx context.Context) ([]*User, error)

	// GetPlaceByID 按 ID 读取地点；不存在时返回 (nil, nil)。
	GetPlaceByID(ctx context.Context, placeID string) (*Place, error)

	// GetTopPlaces 按全局热度（likes 降序）返回 [offset, offset+limit) 的地点切片。
	GetTopPlaces(ctx context.Context, offset, limit int) ([]*Place, error)

	// Interact 写路径：为 (user, place) 累加交互次数，upsert 语义保证
	// 每用户每地点至多一条 Metric。调用方负责随后使缓存失效。
	Interact(ctx context.Context, userID, placeID string, delta int) error
}
