// Package repository 提供 core.Repository 的内存实现，
// 用于测试 fixture、本地开发与数据种子。SQL/Postgres 等引擎在模块之外，
// 实现同一接口即可接入。
package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/moodyhq/placerec/core"
)

// Memory 是内存仓储。所有读取返回深拷贝：
// 引擎快照与写路径互不串改，与“快照只读、写后显式失效缓存”的契约一致。
type Memory struct {
	mu     sync.RWMutex
	users  map[string]*core.User
	places map[string]*core.Place
}

var _ core.Repository = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users:  make(map[string]*core.User),
		places: make(map[string]*core.Place),
	}
}

// AddUser 写入（或覆盖）一个用户，种子/测试用。
func (m *Memory) AddUser(user *core.User) {
	if user == nil || user.ID == "" {
		return
	}
	if user.Profile == "" {
		user.Profile = core.DefaultProfile
	}
	m.mu.Lock()
	m.users[user.ID] = cloneUser(user)
	m.mu.Unlock()
}

// AddPlace 写入（或覆盖）一个地点，种子/测试用。
func (m *Memory) AddPlace(place *core.Place) {
	if place == nil || place.ID == "" {
		return
	}
	m.mu.Lock()
	m.places[place.ID] = clonePlace(place)
	m.mu.Unlock()
}

// RemovePlace 删除一个地点，模拟目录数据漂移的测试用。
// 指向该地点的 Metric 保留不动。
func (m *Memory) RemovePlace(placeID string) {
	m.mu.Lock()
	delete(m.places, placeID)
	m.mu.Unlock()
}

// Like 为地点累加一个赞（写路径，外部调用方语义）。
func (m *Memory) Like(placeID string) {
	m.mu.Lock()
	if place, ok := m.places[placeID]; ok {
		place.Likes++
	}
	m.mu.Unlock()
}

func (m *Memory) GetUserByID(ctx context.Context, userID string) (*core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	return cloneUser(user), nil
}

func (m *Memory) GetAllUsers(ctx context.Context) ([]*core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Strings(ids) // 确定性迭代序

	users := make([]*core.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, cloneUser(m.users[id]))
	}
	return users, nil
}

func (m *Memory) GetPlaceByID(ctx context.Context, placeID string) (*core.Place, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	place, ok := m.places[placeID]
	if !ok {
		return nil, nil
	}
	return clonePlace(place), nil
}

func (m *Memory) GetTopPlaces(ctx context.Context, offset, limit int) ([]*core.Place, error) {
	if limit <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	all := make([]*core.Place, 0, len(m.places))
	for _, place := range m.places {
		all = append(all, clonePlace(place))
	}
	m.mu.RUnlock()

	// likes 降序，同赞数按 place_id 升序
	sort.Slice(all, func(i, j int) bool {
		if all[i].Likes != all[j].Likes {
			return all[i].Likes > all[j].Likes
		}
		return all[i].ID < all[j].ID
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// Interact 为 (user, place) 累加交互次数。upsert：同一地点至多一条 Metric。
func (m *Memory) Interact(ctx context.Context, userID, placeID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return core.ErrUserNotFound
	}
	if _, ok := m.places[placeID]; !ok {
		return core.ErrPlaceNotFound
	}

	for i := range user.Metrics {
		if user.Metrics[i].PlaceID == placeID {
			user.Metrics[i].Interactions += delta
			if user.Metrics[i].Interactions < 0 {
				user.Metrics[i].Interactions = 0
			}
			return nil
		}
	}
	if delta < 0 {
		delta = 0
	}
	user.Metrics = append(user.Metrics, core.Metric{
		PlaceID:      placeID,
		UserID:       userID,
		Interactions: delta,
	})
	return nil
}

func cloneUser(u *core.User) *core.User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Metrics = append([]core.Metric(nil), u.Metrics...)
	cp.FavoritePlaces = append([]core.FavoritePlace(nil), u.FavoritePlaces...)
	return &cp
}

func clonePlace(p *core.Place) *core.Place {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	return &cp
}
