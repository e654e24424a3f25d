// Package pool tracks provider accounts per kind: health, selection,
// persistence, and probing.
package pool

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/polygate-dev/polygate/internal/client"
	"github.com/polygate-dev/polygate/internal/protocol"
)

// DefaultMaxErrorCount flips an entry unhealthy after this many failures.
const DefaultMaxErrorCount = 3

// ErrNoHealthyProvider is returned when selection finds no usable entry.
var ErrNoHealthyProvider = fmt.Errorf("no healthy provider available")

// LastError records the most recent failure on an entry.
type LastError struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// ProviderEntry is one upstream account with its runtime health state.
// Health counters are mutated only by the orchestrator and the probe task.
type ProviderEntry struct {
	UUID               string             `json:"uuid"`
	Kind               string             `json:"kind"`
	Credentials        client.Credentials `json:"credentials"`
	IsHealthy          bool               `json:"isHealthy"`
	IsDisabled         bool               `json:"isDisabled"`
	UsageCount         int64              `json:"usageCount"`
	ErrorCount         int                `json:"errorCount"`
	LastUsedAt         time.Time          `json:"lastUsedAt"`
	LastError          *LastError         `json:"lastError,omitempty"`
	LastHealthCheckAt  time.Time          `json:"lastHealthCheckAt,omitempty"`
	CheckHealthEnabled bool               `json:"checkHealthEnabled"`
	CheckModelName     string             `json:"checkModelName,omitempty"`
	NotSupportedModels []string           `json:"notSupportedModels,omitempty"`
}

func (e *ProviderEntry) supportsModel(model string) bool {
	for _, m := range e.NotSupportedModels {
		if m == model {
			return false
		}
	}
	return true
}

// Pool is the provider registry: kind → ordered entries. Reads may be
// concurrent; all mutation happens under mu.
type Pool struct {
	mu            sync.RWMutex
	entries       map[string][]*ProviderEntry
	maxErrorCount int

	adapterMu sync.Mutex
	adapters  map[string]client.Adapter
}

// New creates an empty pool.
func New(maxErrorCount int) *Pool {
	if maxErrorCount <= 0 {
		maxErrorCount = DefaultMaxErrorCount
	}
	return &Pool{
		entries:       make(map[string][]*ProviderEntry),
		maxErrorCount: maxErrorCount,
		adapters:      make(map[string]client.Adapter),
	}
}

// Adapter returns the cached upstream adapter for an entry, constructing it
// on first use.
func (p *Pool) Adapter(entry *ProviderEntry) (client.Adapter, error) {
	p.adapterMu.Lock()
	defer p.adapterMu.Unlock()
	if a, ok := p.adapters[entry.UUID]; ok {
		return a, nil
	}
	a, err := client.New(entry.Kind, entry.Credentials)
	if err != nil {
		return nil, err
	}
	p.adapters[entry.UUID] = a
	return a, nil
}

// Kinds returns the kinds that currently have entries.
func (p *Pool) Kinds() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	kinds := make([]string, 0, len(p.entries))
	for kind := range p.entries {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Entries returns a snapshot copy of the entries for a kind.
func (p *Pool) Entries(kind string) []ProviderEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]ProviderEntry, 0, len(p.entries[kind]))
	for _, e := range p.entries[kind] {
		out = append(out, *e)
	}
	return out
}

// Select picks the entry to serve a request for (kind, model): disabled
// entries never, unhealthy entries only when every entry of the kind is
// unhealthy (half-open: least-recently-errored first), model exclusions
// respected, ties broken round-robin on lastUsedAt ascending. Bumps
// usageCount and lastUsedAt on the returned entry.
func (p *Pool) Select(kind, model string) (*ProviderEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var eligible []*ProviderEntry
	var unhealthy []*ProviderEntry
	for _, e := range p.entries[kind] {
		if e.IsDisabled || !e.supportsModel(model) {
			continue
		}
		if e.IsHealthy {
			eligible = append(eligible, e)
		} else {
			unhealthy = append(unhealthy, e)
		}
	}

	var chosen *ProviderEntry
	switch {
	case len(eligible) > 0:
		sort.SliceStable(eligible, func(i, j int) bool {
			return eligible[i].LastUsedAt.Before(eligible[j].LastUsedAt)
		})
		chosen = eligible[0]
	case len(unhealthy) > 0:
		// Circuit-breaker half-open: try the one that failed longest ago.
		sort.SliceStable(unhealthy, func(i, j int) bool {
			return errorTime(unhealthy[i]).Before(errorTime(unhealthy[j]))
		})
		chosen = unhealthy[0]
		logrus.Warnf("all %s providers unhealthy, half-open attempt on %s", kind, chosen.UUID)
	default:
		return nil, ErrNoHealthyProvider
	}

	chosen.UsageCount++
	chosen.LastUsedAt = time.Now()
	snapshot := *chosen
	return &snapshot, nil
}

func errorTime(e *ProviderEntry) time.Time {
	if e.LastError != nil {
		return e.LastError.At
	}
	return time.Time{}
}

// MarkUnhealthy records a failure on an entry; crossing maxErrorCount flips
// isHealthy. Unknown uuids are ignored, which makes the call idempotent
// across pool reloads.
func (p *Pool) MarkUnhealthy(kind, id string, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.entries[kind] {
		if e.UUID != id {
			continue
		}
		e.ErrorCount++
		e.LastError = &LastError{Message: message, At: time.Now()}
		if e.ErrorCount >= p.maxErrorCount && e.IsHealthy {
			e.IsHealthy = false
			logrus.Warnf("provider %s (%s) marked unhealthy after %d errors: %s", e.UUID, kind, e.ErrorCount, message)
		}
		return
	}
}

// ResetHealth clears error state for every entry of a kind.
func (p *Pool) ResetHealth(kind string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.entries[kind] {
		e.ErrorCount = 0
		e.LastError = nil
		e.IsHealthy = true
	}
}

// markProbeResult updates one entry from a probe outcome.
func (p *Pool) markProbeResult(kind, id string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.entries[kind] {
		if e.UUID != id {
			continue
		}
		e.LastHealthCheckAt = time.Now()
		if err == nil {
			e.ErrorCount = 0
			e.LastError = nil
			e.IsHealthy = true
		} else {
			e.IsHealthy = false
			e.LastError = &LastError{Message: err.Error(), At: time.Now()}
		}
		return
	}
}

// SetEnabled flips the disabled flag on an entry.
func (p *Pool) SetEnabled(kind, id string, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.entries[kind] {
		if e.UUID == id {
			e.IsDisabled = !enabled
			return nil
		}
	}
	return fmt.Errorf("provider %s not found in kind %s", id, kind)
}

// Add appends a new entry for its kind, assigning a uuid when absent.
func (p *Pool) Add(entry ProviderEntry) *ProviderEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	if entry.UUID == "" {
		entry.UUID = uuid.New().String()
	}
	entry.IsHealthy = true
	e := &entry
	p.entries[e.Kind] = append(p.entries[e.Kind], e)
	return e
}

// Update replaces the stored entry with the same kind and uuid.
func (p *Pool) Update(entry ProviderEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, e := range p.entries[entry.Kind] {
		if e.UUID == entry.UUID {
			p.entries[entry.Kind][i] = &entry
			p.adapterMu.Lock()
			delete(p.adapters, entry.UUID)
			p.adapterMu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("provider %s not found in kind %s", entry.UUID, entry.Kind)
}

// Delete removes an entry.
func (p *Pool) Delete(kind, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	entries := p.entries[kind]
	for i, e := range entries {
		if e.UUID == id {
			p.entries[kind] = append(entries[:i], entries[i+1:]...)
			p.adapterMu.Lock()
			delete(p.adapters, id)
			p.adapterMu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("provider %s not found in kind %s", id, kind)
}

// Replace swaps in a freshly loaded entry set, carrying runtime counters
// over from existing entries with the same uuid so a file edit does not
// reset health state.
func (p *Pool) Replace(loaded map[string][]*ProviderEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev := make(map[string]*ProviderEntry)
	for _, entries := range p.entries {
		for _, e := range entries {
			prev[e.UUID] = e
		}
	}
	for _, entries := range loaded {
		for _, e := range entries {
			if old, ok := prev[e.UUID]; ok {
				e.UsageCount = old.UsageCount
				e.ErrorCount = old.ErrorCount
				e.LastUsedAt = old.LastUsedAt
				e.LastError = old.LastError
				e.LastHealthCheckAt = old.LastHealthCheckAt
				e.IsHealthy = old.IsHealthy
			}
		}
	}
	p.entries = loaded

	p.adapterMu.Lock()
	p.adapters = make(map[string]client.Adapter)
	p.adapterMu.Unlock()
}

// HealthSummary reports per-kind totals for the health endpoint.
type HealthSummary struct {
	Kind      string `json:"kind"`
	Total     int    `json:"total"`
	Healthy   int    `json:"healthy"`
	Disabled  int    `json:"disabled"`
	Protocols string `json:"protocol"`
}

// Health summarizes every kind in the pool.
func (p *Pool) Health() []HealthSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	kinds := make([]string, 0, len(p.entries))
	for kind := range p.entries {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	out := make([]HealthSummary, 0, len(kinds))
	for _, kind := range kinds {
		s := HealthSummary{Kind: kind, Protocols: string(protocol.ProtocolOf(kind))}
		for _, e := range p.entries[kind] {
			s.Total++
			if e.IsHealthy {
				s.Healthy++
			}
			if e.IsDisabled {
				s.Disabled++
			}
		}
		out = append(out, s)
	}
	return out
}
