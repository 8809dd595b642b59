// Package featurestore 定义在线特征服务的契约。
package featurestore

import "context"

// Request 按实体读取在线特征。
type Request struct {
	Provider string
	// FeatureService 特征服务或特征视图名称
	FeatureService string
	// EntityKey 实体键名，例如 "customer_id"
	EntityKey string
	// EntityID 实体键值
	EntityID any
	// Features 需要的特征，为空表示全部
	Features []string
}

// Service 在线特征服务。
type Service interface {
	// OnlineFeatures 返回特征名到特征值的映射
	OnlineFeatures(ctx context.Context, req *Request) (map[string]any, error)
}
