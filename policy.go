package twitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// call is the policy state of one logical call, shared by all of its pages.
type call struct {
	refreshed bool
}

// pageRequest is a GraphQL request plus its fallback options.
type pageRequest struct {
	gqlRequest

	// alternate is a second variable set tried once after a variable-shape
	// rejection. Nil when the resource has only one shape.
	alternate map[string]any

	// postOn404 re-sends a 404'd GET as POST with the same ID before moving
	// to the next candidate.
	postOn404 bool
}

// execute runs req with operation-ID fallback. When every candidate fails
// and at least one was stale, the registry is refreshed and the whole
// sequence replayed, at most once per logical call.
func (c *Client) execute(ctx context.Context, cl *call, req pageRequest) ([]byte, error) {
	body, err := c.executeShapes(ctx, req)
	if err == nil || !isStale(err) || cl.refreshed || ctx.Err() != nil {
		return body, err
	}

	cl.refreshed = true
	slog.Info("operation ids exhausted, refreshing registry", slog.String("operation", req.operation))
	// Refresh failures are logged by the registry; the replay then runs on
	// the unchanged table and fails the same way.
	_ = c.registry.Refresh(ctx)
	return c.executeShapes(ctx, req)
}

// executeShapes tries the primary variable shape, then the alternate one if
// the platform rejected a variable.
func (c *Client) executeShapes(ctx context.Context, req pageRequest) ([]byte, error) {
	body, err := c.tryCandidates(ctx, req.gqlRequest, req.postOn404)
	if err == nil || req.alternate == nil || !errors.Is(err, ErrVariableShape) {
		return body, err
	}
	slog.Debug("variable shape rejected, retrying with alternate",
		slog.String("operation", req.operation),
		slog.Any("error", err))
	alt := req.gqlRequest
	alt.variables = req.alternate
	return c.tryCandidates(ctx, alt, req.postOn404)
}

// tryCandidates sends req to each resolved ID in order. Stale IDs and
// transport failures move on to the next ID; anything else is final.
func (c *Client) tryCandidates(ctx context.Context, req gqlRequest, postOn404 bool) ([]byte, error) {
	ids := c.registry.Resolve(req.operation)

	var lastErr error
	had404 := false
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := c.send(ctx, id, req)
		if err == nil {
			return body, nil
		}

		if isStale(err) && postOn404 && req.method == "GET" {
			post := req
			post.method = "POST"
			body, err = c.send(ctx, id, post)
			if err == nil {
				return body, nil
			}
			if !isStale(err) && !isTransport(err) {
				return nil, err
			}
			had404 = true
		}

		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case isStale(err):
			had404 = true
			slog.Debug("operation id stale", slog.String("operation", req.operation), slog.String("query_id", id))
		case isTransport(err):
			slog.Warn("transport failure, trying next operation id",
				slog.String("operation", req.operation),
				slog.String("query_id", id),
				slog.Any("error", err))
		default:
			return nil, err
		}
		lastErr = err
	}
	return nil, exhausted(req.operation, len(ids), lastErr, had404)
}

// exhausted reports that no candidate worked. It is stale-kind when any
// candidate answered 404, so the caller knows a refresh may help.
func exhausted(operation string, tried int, last error, had404 bool) error {
	kind := ErrTransport
	if had404 {
		kind = ErrStaleOperationID
	}
	msg := "no operation ids to try"
	var re *RequestError
	switch {
	case errors.As(last, &re):
		msg = fmt.Sprintf("all %d operation ids failed, last: %s", tried, re.messageText())
	case last != nil:
		msg = fmt.Sprintf("all %d operation ids failed, last: %v", tried, last)
	}
	return &RequestError{Operation: operation, Message: msg, kind: kind, err: last}
}
