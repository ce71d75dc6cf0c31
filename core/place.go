package core

// Place 是推荐候选的目标实体：地点及其展示元信息与热度。
// 引擎侧只读；Likes 由仓储层的写路径维护。
type Place struct {
	ID     string
	Slug   string
	Name   string
	Likes  int
	Rating float64
	Tags   []string
}

// HasTag 判断地点是否携带某标签。
func (p *Place) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TagOverlap 返回地点标签与给定标签集合的交集大小。
func (p *Place) TagOverlap(tags map[string]struct{}) int {
	n := 0
	for _, t := range p.Tags {
		if _, ok := tags[t]; ok {
			n++
		}
	}
	return n
}
