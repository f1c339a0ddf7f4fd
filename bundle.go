package twitter

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"
)

var (
	bundleScriptRe = regexp.MustCompile(regexp.QuoteMeta(bundleOrigin) + `[A-Za-z-]*/[A-Za-z0-9_.~-]+\.js`)
	queryIDRe      = regexp.MustCompile(`queryId:\s*"([A-Za-z0-9_-]+)"\s*,\s*operationName:\s*"([A-Za-z0-9_]+)"`)
)

// findBundleScripts returns the client bundle script URLs referenced by the
// home page, main and api chunks first, capped at limit.
func findBundleScripts(html string, limit int) []string {
	var scripts []string
	seen := make(map[string]bool)
	for _, u := range bundleScriptRe.FindAllString(html, -1) {
		if seen[u] {
			continue
		}
		seen[u] = true
		scripts = append(scripts, u)
	}
	slices.SortStableFunc(scripts, func(a, b string) int {
		return bundlePriority(a) - bundlePriority(b)
	})
	if limit > 0 && len(scripts) > limit {
		scripts = scripts[:limit]
	}
	return scripts
}

func bundlePriority(u string) int {
	name := u[strings.LastIndex(u, "/")+1:]
	switch {
	case strings.HasPrefix(name, "main."):
		return 0
	case strings.HasPrefix(name, "api."):
		return 1
	case strings.Contains(name, "endpoints."):
		return 2
	}
	return 3
}

// parseOperationIDs extracts operationName → queryId pairs from a client
// bundle. The first occurrence of a name wins.
func parseOperationIDs(js string) map[string]string {
	ids := make(map[string]string)
	for _, m := range queryIDRe.FindAllStringSubmatch(js, -1) {
		if _, ok := ids[m[2]]; !ok {
			ids[m[2]] = m[1]
		}
	}
	return ids
}

// discover fetches the home page and its client bundles and collects every
// operation ID they declare.
func (r *Registry) discover(ctx context.Context) (map[string]string, error) {
	if r.cfg.fetch == nil {
		return nil, fmt.Errorf("no page fetcher configured")
	}
	home, err := r.fetchWithRetry(ctx, twitterHome)
	if err != nil {
		return nil, fmt.Errorf("fetch home page: %w", err)
	}
	scripts := findBundleScripts(string(home), r.cfg.scriptLimit)
	if len(scripts) == 0 {
		return nil, fmt.Errorf("no client bundle scripts found in home page")
	}

	found := make(map[string]string)
	for _, script := range scripts {
		js, err := r.fetchWithRetry(ctx, script)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Debug("registry: bundle fetch failed", slog.String("url", script), slog.Any("error", err))
			continue
		}
		for name, id := range parseOperationIDs(string(js)) {
			if _, ok := found[name]; !ok {
				found[name] = id
			}
		}
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("no operation ids found in %d bundle scripts", len(scripts))
	}
	return found, nil
}

func (r *Registry) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	attempts := max(1, r.cfg.attempts)
	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			delay := r.cfg.backoff.Duration(attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		body, err := r.cfg.fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
