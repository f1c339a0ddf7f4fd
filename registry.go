package twitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/singleflight"
)

// pageFetcher GETs a URL and returns the body of a 200 response.
type pageFetcher func(ctx context.Context, url string) ([]byte, error)

type registryConfig struct {
	fetch       pageFetcher
	cachePath   string
	scriptLimit int
	attempts    int
	backoff     stealth.BackoffConfig
}

// opTable is one immutable generation of the registry. It is never modified
// after being stored; a refresh builds and swaps in a new one.
type opTable struct {
	Operations  map[string][]string `yaml:"operations"`
	RefreshedAt time.Time           `yaml:"refreshed_at,omitempty"`
}

// RegistrySnapshot is a point-in-time copy of the operation table.
type RegistrySnapshot struct {
	Operations  map[string][]string
	RefreshedAt time.Time
}

// Registry maps GraphQL operation names to ordered candidate IDs.
// Safe for concurrent use.
type Registry struct {
	cfg      registryConfig
	table    atomic.Pointer[opTable]
	loadOnce sync.Once
	group    singleflight.Group
}

func newRegistry(cfg registryConfig) *Registry {
	r := &Registry{cfg: cfg}
	r.table.Store(&opTable{Operations: builtinOperations()})
	return r
}

// builtinOperations returns a fresh copy of the built-in candidate lists.
func builtinOperations() map[string][]string {
	ops := make(map[string][]string, len(Endpoints))
	for name, ep := range Endpoints {
		ops[name] = slices.Clone(ep.IDs)
	}
	return ops
}

// Resolve returns the candidate IDs for name, best first. The result is never
// empty: a name with no known ID resolves to itself, which the platform
// answers with 404 and so drives a refresh that may discover the real ID.
func (r *Registry) Resolve(name string) []string {
	r.loadOnce.Do(r.loadCache)
	if ids := r.table.Load().Operations[name]; len(ids) > 0 {
		return slices.Clone(ids)
	}
	return []string{name}
}

// Snapshot returns a copy of the current table.
func (r *Registry) Snapshot() RegistrySnapshot {
	r.loadOnce.Do(r.loadCache)
	t := r.table.Load()
	ops := make(map[string][]string, len(t.Operations))
	for name, ids := range t.Operations {
		ops[name] = slices.Clone(ids)
	}
	return RegistrySnapshot{Operations: ops, RefreshedAt: t.RefreshedAt}
}

// Refresh re-derives the whole table from the platform's client bundles and
// swaps it in atomically. Concurrent calls share one refresh. On failure the
// current table stays in use and the error is returned for reporting only.
func (r *Registry) Refresh(ctx context.Context) error {
	r.loadOnce.Do(r.loadCache)
	_, err, _ := r.group.Do("refresh", func() (any, error) {
		return nil, r.refresh(ctx)
	})
	return err
}

func (r *Registry) refresh(ctx context.Context) error {
	discovered, err := r.discover(ctx)
	if err != nil {
		slog.Warn("registry: refresh failed, keeping current ids", slog.Any("error", err))
		return fmt.Errorf("refresh operation ids: %w", err)
	}

	next := &opTable{
		Operations:  mergeOperations(discovered, builtinOperations()),
		RefreshedAt: time.Now(),
	}
	r.table.Store(next)

	known := 0
	for name := range Endpoints {
		if _, ok := discovered[name]; ok {
			known++
		}
	}
	slog.Info("registry: refreshed",
		slog.Int("discovered", len(discovered)),
		slog.Int("known_operations", known))

	if err := r.saveCache(next); err != nil {
		slog.Warn("registry: cache write failed", slog.String("path", r.cfg.cachePath), slog.Any("error", err))
	}
	return nil
}

// mergeOperations puts each primary ID first and the fallbacks after it,
// dropping duplicates.
func mergeOperations(primary map[string]string, fallbacks map[string][]string) map[string][]string {
	out := make(map[string][]string, len(fallbacks)+len(primary))
	for name, ids := range fallbacks {
		out[name] = ids
	}
	for name, id := range primary {
		out[name] = dedupeIDs(append([]string{id}, out[name]...))
	}
	return out
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// loadCache seeds the table from the snapshot file, if any. Cached IDs go in
// front of the built-in ones.
func (r *Registry) loadCache() {
	if r.cfg.cachePath == "" {
		return
	}
	data, err := os.ReadFile(r.cfg.cachePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("registry: cache read failed", slog.String("path", r.cfg.cachePath), slog.Any("error", err))
		}
		return
	}
	var cached opTable
	if err := yaml.Unmarshal(data, &cached); err != nil {
		slog.Warn("registry: cache is not valid yaml", slog.String("path", r.cfg.cachePath), slog.Any("error", err))
		return
	}

	ops := builtinOperations()
	for name, ids := range cached.Operations {
		ops[name] = dedupeIDs(append(slices.Clone(ids), ops[name]...))
	}
	r.table.Store(&opTable{Operations: ops, RefreshedAt: cached.RefreshedAt})
	slog.Debug("registry: loaded cache",
		slog.String("path", r.cfg.cachePath),
		slog.Int("operations", len(cached.Operations)))
}

// saveCache persists t through a temp file and rename.
func (r *Registry) saveCache(t *opTable) error {
	if r.cfg.cachePath == "" {
		return nil
	}
	data, err := yaml.Marshal(&opTable{Operations: maps.Clone(t.Operations), RefreshedAt: t.RefreshedAt})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.cfg.cachePath), 0o755); err != nil {
		return err
	}
	tmp := r.cfg.cachePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.cfg.cachePath)
}
