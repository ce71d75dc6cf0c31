package feature

import (
	"context"
	"fmt"
	"strings"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"
)

// onlineClient 是官方 SDK gRPC 客户端的窄接口（便于注入测试替身）。
type onlineClient interface {
	GetOnlineFeatures(ctx context.Context, req *feastsdk.OnlineFeaturesRequest) (*feastsdk.OnlineFeaturesResponse, error)
}

// FeastSource 是基于官方 Feast Go SDK 的用户特征来源。
//
// 特征引用形如 "user_profile:age"，响应里按引用名取值后剥去视图前缀，
// 映射为 Enrich 约定的短名（age / gender / music_genre / profile）。
type FeastSource struct {
	client onlineClient

	// Project 项目名称
	Project string

	// EntityKey 实体键名，默认 "user_id"
	EntityKey string

	// Features 要拉取的特征引用，默认 user_profile 视图的人口学三元组
	Features []string
}

var _ Source = (*FeastSource)(nil)

// NewFeastSource 创建 Feast 在线特征来源；port 为 0 时使用默认 6565。
func NewFeastSource(host string, port int, project string) (*FeastSource, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("feast grpc client: %w", err)
	}
	return &FeastSource{
		client:  client,
		Project: project,
	}, nil
}

func (s *FeastSource) UserFeatures(ctx context.Context, userID string) (map[string]any, error) {
	if s.client == nil || userID == "" {
		return nil, nil
	}

	entityKey := s.EntityKey
	if entityKey == "" {
		entityKey = "user_id"
	}
	features := s.Features
	if len(features) == 0 {
		features = []string{
			"user_profile:age",
			"user_profile:gender",
			"user_profile:music_genre",
		}
	}

	req := &feastsdk.OnlineFeaturesRequest{
		Features: features,
		Entities: []feastsdk.Row{
			{entityKey: feastsdk.StrVal(userID)},
		},
		Project: s.Project,
	}

	resp, err := s.client.GetOnlineFeatures(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("feast get online features: %w", err)
	}

	rows := resp.Rows()
	if len(rows) == 0 {
		return nil, nil
	}

	out := make(map[string]any, len(features))
	for _, ref := range features {
		val, ok := rows[0][ref]
		if !ok {
			// 某些部署按短名回包
			val, ok = rows[0][shortName(ref)]
		}
		if !ok {
			continue
		}
		if converted := fromValue(val); converted != nil {
			out[shortName(ref)] = converted
		}
	}
	return out, nil
}

func (s *FeastSource) Close() error {
	// 官方 SDK 的 gRPC 连接由库自身管理
	s.client = nil
	return nil
}

// shortName 剥去特征引用的视图前缀："user_profile:age" -> "age"。
func shortName(ref string) string {
	if idx := strings.LastIndex(ref, ":"); idx >= 0 {
		return ref[idx+1:]
	}
	return ref
}

// fromValue 把 SDK 的 proto Value 转为 Go 原生值。
func fromValue(v *feasttypes.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.GetVal().(type) {
	case *feasttypes.Value_StringVal:
		return val.StringVal
	case *feasttypes.Value_Int32Val:
		return int(val.Int32Val)
	case *feasttypes.Value_Int64Val:
		return int(val.Int64Val)
	case *feasttypes.Value_DoubleVal:
		return val.DoubleVal
	case *feasttypes.Value_FloatVal:
		return float64(val.FloatVal)
	case *feasttypes.Value_BoolVal:
		return val.BoolVal
	case *feasttypes.Value_BytesVal:
		return string(val.BytesVal)
	default:
		return nil
	}
}
