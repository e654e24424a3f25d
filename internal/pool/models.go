package pool

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/polygate-dev/polygate/internal/protocol"
	"github.com/polygate-dev/polygate/pkg/adaptor"
)

// modelListTTL is how long a fetched upstream model list stays fresh.
const modelListTTL = 5 * time.Minute

type cachedModels struct {
	models    []protocol.ModelInfo
	fetchedAt time.Time
}

// ModelCache serves the combined model list across all pool kinds, caching
// each kind's upstream list.
type ModelCache struct {
	pool *Pool

	mu    sync.Mutex
	cache map[string]cachedModels
}

func NewModelCache(p *Pool) *ModelCache {
	return &ModelCache{pool: p, cache: make(map[string]cachedModels)}
}

// List returns the pool's combined model list, labeled per kind. A kind
// whose upstream listing fails contributes its stale cache if present, or
// nothing; listing never fails as a whole.
func (mc *ModelCache) List(ctx context.Context) []adaptor.LabeledModel {
	var out []adaptor.LabeledModel
	for _, kind := range mc.pool.Kinds() {
		models := mc.listKind(ctx, kind)
		for _, m := range models {
			out = append(out, adaptor.LabeledModel{Kind: kind, Info: m})
		}
	}
	return out
}

// ListKind returns the model list for one kind.
func (mc *ModelCache) ListKind(ctx context.Context, kind string) []adaptor.LabeledModel {
	models := mc.listKind(ctx, kind)
	out := make([]adaptor.LabeledModel, 0, len(models))
	for _, m := range models {
		out = append(out, adaptor.LabeledModel{Kind: kind, Info: m})
	}
	return out
}

func (mc *ModelCache) listKind(ctx context.Context, kind string) []protocol.ModelInfo {
	mc.mu.Lock()
	cached, ok := mc.cache[kind]
	mc.mu.Unlock()
	if ok && time.Since(cached.fetchedAt) < modelListTTL {
		return cached.models
	}

	entry, err := mc.pool.Select(kind, "")
	if err != nil {
		return cached.models
	}
	adapterClient, err := mc.pool.Adapter(entry)
	if err != nil {
		logrus.Warnf("model list for %s: %v", kind, err)
		return cached.models
	}
	models, err := adapterClient.ListModels(ctx)
	if err != nil {
		logrus.Warnf("model list for %s failed: %v", kind, err)
		return cached.models
	}

	mc.mu.Lock()
	mc.cache[kind] = cachedModels{models: models, fetchedAt: time.Now()}
	mc.mu.Unlock()
	return models
}
