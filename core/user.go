package core

// DefaultProfile 是用户画像描述的初始占位值：画像尚未形成。
const DefaultProfile = "Formando perfil..."

// Metric 是一条用户-地点交互指标：累计交互次数 + 可选兴趣标签。
// 仓储层保证同一用户对同一地点至多一条 Metric（upsert 语义）。
type Metric struct {
	PlaceID      string
	UserID       string
	Interactions int
	Interest     string // 可选：该交互关联的兴趣标签（如 "rock"、"coffee"）
}

// FavoritePlace 是收藏关系：(user_id, place_id) 的集合成员事实，独立于 Metric。
type FavoritePlace struct {
	UserID  string
	PlaceID string
}

// User 是用户画像的核心结构。
//
// 设计要点：
//  维度          作用
//  静态属性      冷启动 / 人口学相似度（Age / Gender / MusicGenre）
//  交互指标      相似度主信号（Metrics 余弦）
//  收藏关系      辅助相似度信号
//  画像描述      展示用派生字段，默认 DefaultProfile
//
// 引擎只读：快照与缓存持有的 User 不被 Recommend 路径原地修改，
// 写路径一律经由 Repository。
type User struct {
	ID             string
	Name           string
	Age            int
	Gender         string // male / female / unknown
	MusicGenre     string
	Profile        string // 派生描述，默认 DefaultProfile
	Metrics        []Metric
	FavoritePlaces []FavoritePlace
}

// NewUser 创建一个带默认画像描述的用户。
func NewUser(id string) *User {
	return &User{
		ID:      id,
		Profile: DefaultProfile,
	}
}

// MetricsByPlace 返回 place_id -> interactions 的向量形式，供余弦相似度使用。
func (u *User) MetricsByPlace() map[string]int {
	m := make(map[string]int, len(u.Metrics))
	for _, metric := range u.Metrics {
		m[metric.PlaceID] = metric.Interactions
	}
	return m
}

// MetricFor 返回用户对某地点的交互次数；无记录时返回 0。
func (u *User) MetricFor(placeID string) int {
	for _, metric := range u.Metrics {
		if metric.PlaceID == placeID {
			return metric.Interactions
		}
	}
	return 0
}

// InterestTags 返回用户 Metrics 中出现过的兴趣标签集合（去重，忽略空值）。
func (u *User) InterestTags() map[string]struct{} {
	tags := make(map[string]struct{})
	for _, metric := range u.Metrics {
		if metric.Interest != "" {
			tags[metric.Interest] = struct{}{}
		}
	}
	return tags
}

// Visited 返回用户交互过的地点集合。
func (u *User) Visited() map[string]struct{} {
	visited := make(map[string]struct{}, len(u.Metrics))
	for _, metric := range u.Metrics {
		visited[metric.PlaceID] = struct{}{}
	}
	return visited
}

// FavoriteSet 返回收藏地点集合。
func (u *User) FavoriteSet() map[string]struct{} {
	favorites := make(map[string]struct{}, len(u.FavoritePlaces))
	for _, fav := range u.FavoritePlaces {
		favorites[fav.PlaceID] = struct{}{}
	}
	return favorites
}
