package sync

import (
	"context"
	"log/slog"
)

// pageResolver caches name lookups for the lifetime of one fetched page.
// A failed lookup falls back to the raw author identifier and is cached
// too, so each identifier costs at most one call per page.
type pageResolver struct {
	inner  NameResolver
	cache  map[string]string
	logger *slog.Logger
}

func newPageResolver(inner NameResolver, logger *slog.Logger) *pageResolver {
	return &pageResolver{
		inner:  inner,
		cache:  make(map[string]string),
		logger: logger,
	}
}

func (r *pageResolver) resolve(ctx context.Context, authorId string) string {
	if name, ok := r.cache[authorId]; ok {
		return name
	}

	name, err := r.inner.ResolveName(ctx, authorId)
	if err != nil || name == "" {
		if err != nil {
			r.logger.Warn("name resolution failed, using raw id", "author_id", authorId, "err", err)
		}
		name = authorId
	}

	r.cache[authorId] = name
	return name
}
