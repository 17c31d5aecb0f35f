package redirect

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const DefaultRuleCacheSize = 512

// CachedRuleRepository memoizes GetRedirectURL lookups for the process.
// Writes through this repository invalidate the affected entry; edits made
// elsewhere become visible once the TTL expires.
type CachedRuleRepository struct {
	next  RuleRepository
	cache *expirable.LRU[ruleKey, string]
}

// NewCachedRuleRepository wraps next with an LRU of size entries living ttl each.
func NewCachedRuleRepository(next RuleRepository, size int, ttl time.Duration) *CachedRuleRepository {
	if size <= 0 {
		size = DefaultRuleCacheSize
	}
	return &CachedRuleRepository{
		next:  next,
		cache: expirable.NewLRU[ruleKey, string](size, nil, ttl),
	}
}

func (c *CachedRuleRepository) GetRedirectURL(ctx context.Context, role string, kind Kind) (string, error) {
	key := ruleKey{role: role, kind: kind}
	if url, ok := c.cache.Get(key); ok {
		ruleCacheHitsTotal.Inc()
		return url, nil
	}
	ruleCacheMissesTotal.Inc()

	url, err := c.next.GetRedirectURL(ctx, role, kind)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, url)
	return url, nil
}

func (c *CachedRuleRepository) SetRedirectURL(ctx context.Context, role string, kind Kind, url string) error {
	defer c.cache.Remove(ruleKey{role: role, kind: kind})
	return c.next.SetRedirectURL(ctx, role, kind, url)
}

func (c *CachedRuleRepository) DeleteRedirectURL(ctx context.Context, role string, kind Kind) error {
	defer c.cache.Remove(ruleKey{role: role, kind: kind})
	return c.next.DeleteRedirectURL(ctx, role, kind)
}

func (c *CachedRuleRepository) FindRules(ctx context.Context) ([]Rule, error) {
	return c.next.FindRules(ctx)
}

// Purge drops every cached entry.
func (c *CachedRuleRepository) Purge() {
	c.cache.Purge()
}
