package fetch

import (
	"context"

	"github.com/bkyoung/issuegraph/internal/domain"
)

// resolverChain tries each resolver in order, consulting the cache first
// and writing hits back through it. A nil cache disables caching.
type resolverChain struct {
	cache CommitCache
	links []domain.CommitResolver
}

// NewCommitResolverChain composes resolvers into one. Typical wiring puts
// the local clone before the API so commits already fetched resolve without
// a network round trip.
func NewCommitResolverChain(cache CommitCache, links ...domain.CommitResolver) domain.CommitResolver {
	return &resolverChain{cache: cache, links: links}
}

func (c *resolverChain) CommitByHash(ctx context.Context, hash string) (*domain.Commit, bool) {
	if c.cache != nil {
		if commit, ok := c.cache.CommitByHash(ctx, hash); ok {
			return commit, true
		}
	}

	for _, link := range c.links {
		commit, ok := link.CommitByHash(ctx, hash)
		if !ok {
			continue
		}
		c.store(ctx, commit)
		return commit, true
	}
	return nil, false
}

func (c *resolverChain) CommitByURL(ctx context.Context, hash, url string) (*domain.Commit, bool) {
	if c.cache != nil {
		if commit, ok := c.cache.CommitByURL(ctx, hash, url); ok {
			return commit, true
		}
	}

	for _, link := range c.links {
		commit, ok := link.CommitByURL(ctx, hash, url)
		if !ok {
			continue
		}
		c.store(ctx, commit)
		return commit, true
	}
	return nil, false
}

// store writes a resolved commit back through the cache. A write failure is
// not worth failing resolution over.
func (c *resolverChain) store(ctx context.Context, commit *domain.Commit) {
	if c.cache == nil {
		return
	}
	_ = c.cache.PutCommit(ctx, commit)
}
