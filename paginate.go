package twitter

import (
	"context"
	"time"
)

// PageOptions controls multi-page fetches.
type PageOptions struct {
	// MaxPages caps the number of page requests. Zero means no cap.
	MaxPages int

	// StartCursor resumes a previous fetch from its NextCursor.
	StartCursor string

	// PageDelay is waited between page requests, never before the first.
	PageDelay time.Duration

	// Limit stops once this many records are collected. Zero means no limit.
	Limit int

	// PageSize is the per-request count sent to the platform.
	// Zero uses the resource default.
	PageSize int

	// IncludeRaw attaches raw GraphQL results to returned tweets.
	IncludeRaw bool
}

// page is one normalized response.
type page[T any] struct {
	items  []T
	cursor string
}

type pageFunc[T any] func(ctx context.Context, cursor string) (page[T], error)

// paged is the accumulated result of paginate.
type paged[T any] struct {
	items      []T
	nextCursor string
}

// paginate fetches pages until the stream ends, a page fails, or a cap in
// opts is reached. Records are deduplicated by key, first sight wins.
//
// nextCursor is set only when the caller can resume: after MaxPages or
// Limit, or after a failure (then it is the cursor of the failed page, the
// last one known good). A stream that ran out leaves it empty.
//
// When Limit cuts a page short, nextCursor is the cursor that page was
// requested with, so a resume reads the page again and re-delivers the
// records already returned from it. Callers resuming that way should
// dedupe against their previous result. A cut on the first page of a
// fresh walk therefore leaves nextCursor empty: resuming means starting
// over.
func paginate[T any](ctx context.Context, fetch pageFunc[T], key func(T) string, opts PageOptions) (paged[T], error) {
	var out paged[T]
	seen := make(map[string]bool)
	cursor := opts.StartCursor

	for n := 0; ; n++ {
		if opts.MaxPages > 0 && n >= opts.MaxPages {
			out.nextCursor = cursor
			return out, nil
		}
		if n > 0 {
			if err := sleepCtx(ctx, opts.PageDelay); err != nil {
				out.nextCursor = cursor
				return out, err
			}
		}

		p, err := fetch(ctx, cursor)
		if err != nil {
			out.nextCursor = cursor
			return out, err
		}

		added := 0
		for i, item := range p.items {
			k := key(item)
			if seen[k] {
				continue
			}
			seen[k] = true
			out.items = append(out.items, item)
			added++
			if opts.Limit > 0 && len(out.items) >= opts.Limit {
				out.nextCursor = p.cursor
				if hasUnseen(p.items[i+1:], key, seen) || p.cursor == cursor {
					out.nextCursor = cursor
				}
				return out, nil
			}
		}

		if p.cursor == "" || p.cursor == cursor || added == 0 {
			return out, nil
		}
		cursor = p.cursor
	}
}

// hasUnseen reports whether any of items has a key not yet in seen.
func hasUnseen[T any](items []T, key func(T) string, seen map[string]bool) bool {
	for _, item := range items {
		if !seen[key(item)] {
			return true
		}
	}
	return false
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
