// Package sqlsource 定义 SQL 数据源的描述服务契约。
package sqlsource

import "context"

// Service 读取 SQL 数据源的样例数据、表结构或建表语句，用作提示词上下文。
type Service interface {
	// Sample 返回最多 limit 行样例数据
	Sample(ctx context.Context, source string, limit int) (any, error)
	// Schema 返回结构化的表结构描述
	Schema(ctx context.Context, source string) (any, error)
	// DDL 返回建表语句
	DDL(ctx context.Context, source string) (string, error)
}
