package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moodyhq/placerec/similarity"
)

// Config 是引擎的显式配置（支持 YAML）。
// 相似度权重、阈值、分页默认值全部走这里，不依赖进程级全局变量。
type Config struct {
	// SimilarityMin 邻居入选的相似度下界（严格大于）
	SimilarityMin float64 `yaml:"similarity_min"`

	// TTLSeconds 缓存窗口（秒），邻居与聚合两个命名空间共用
	TTLSeconds int `yaml:"ttl_seconds"`

	// ItemsPerPage 每页条数默认值
	ItemsPerPage int `yaml:"items_per_page"`

	// KNeighbors 邻居数默认值
	KNeighbors int `yaml:"k_neighbors"`

	// WeightBySimilarity 聚合时是否按相似度加权（默认关闭：纯求和口径）
	WeightBySimilarity bool `yaml:"weight_by_similarity"`

	// Weights 相似度特征权重
	Weights similarity.Weights `yaml:"weights"`

	// Warmer 后台预热配置
	Warmer WarmerConfig `yaml:"warmer"`
}

// WarmerConfig 是后台全量预热的配置。
type WarmerConfig struct {
	// IntervalSeconds 预热周期（秒），默认 8 小时
	IntervalSeconds int `yaml:"interval_seconds"`

	// Concurrency 预热并发度，默认 4
	Concurrency int `yaml:"concurrency"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		SimilarityMin: 0.1,
		TTLSeconds:    300,
		ItemsPerPage:  5,
		KNeighbors:    5,
		Weights:       similarity.DefaultWeights(),
		Warmer: WarmerConfig{
			IntervalSeconds: int((8 * time.Hour).Seconds()),
			Concurrency:     4,
		},
	}
}

// normalize 为零值字段补上默认值。
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.SimilarityMin <= 0 {
		c.SimilarityMin = def.SimilarityMin
	}
	if c.TTLSeconds <= 0 {
		c.TTLSeconds = def.TTLSeconds
	}
	if c.ItemsPerPage <= 0 {
		c.ItemsPerPage = def.ItemsPerPage
	}
	if c.KNeighbors <= 0 {
		c.KNeighbors = def.KNeighbors
	}
	if c.Weights.Sum() <= 0 {
		c.Weights = def.Weights
	}
	if c.Warmer.IntervalSeconds <= 0 {
		c.Warmer.IntervalSeconds = def.Warmer.IntervalSeconds
	}
	if c.Warmer.Concurrency <= 0 {
		c.Warmer.Concurrency = def.Warmer.Concurrency
	}
	return c
}

// TTL 返回缓存窗口时长。
func (c Config) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Interval 返回预热周期时长。
func (c WarmerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// LoadConfig 从 YAML 文件加载引擎配置，缺省字段回退默认值。
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig 从 YAML 字节解析引擎配置。
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg.normalize(), nil
}
