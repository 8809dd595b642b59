package promptset

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultTTL 缓存的默认有效期。
const DefaultTTL = 5 * time.Minute

// Cached 在提示词集合服务前加一层 TTL 缓存。错误结果不缓存。
type Cached struct {
	svc   Service
	cache *cache.Cache
}

// NewCached 包装 svc，ttl <= 0 时使用 DefaultTTL。
func NewCached(svc Service, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cached{
		svc:   svc,
		cache: cache.New(ttl, 2*ttl),
	}
}

// PromptSetsBySkill 缓存命中时直接返回，否则回源。
func (c *Cached) PromptSetsBySkill(ctx context.Context, workspaceID, skill string) ([]*PromptSet, error) {
	key := workspaceID + "\x00" + skill
	if v, ok := c.cache.Get(key); ok {
		return v.([]*PromptSet), nil
	}

	sets, err := c.svc.PromptSetsBySkill(ctx, workspaceID, skill)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, sets, cache.DefaultExpiration)
	return sets, nil
}

// Invalidate 清空缓存。
func (c *Cached) Invalidate() {
	c.cache.Flush()
}
