package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/tidwall/gjson"
)

// gqlRequest is one GraphQL request before an operation ID is chosen.
type gqlRequest struct {
	operation    string
	method       string
	variables    map[string]any
	features     map[string]any
	fieldToggles map[string]any
}

// buildURL returns the request URL for queryID. GET requests carry their
// payload as URL-encoded JSON parameters.
func (r gqlRequest) buildURL(queryID string) (string, error) {
	u := endpointURL(queryID, r.operation)
	if r.method != "GET" {
		return u, nil
	}
	params := url.Values{}
	for name, v := range map[string]map[string]any{
		"variables":    r.variables,
		"features":     r.features,
		"fieldToggles": r.fieldToggles,
	} {
		if v == nil {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", name, err)
		}
		params.Set(name, string(b))
	}
	return u + "?" + params.Encode(), nil
}

// buildBody returns the JSON body for POST requests, nil for GET.
func (r gqlRequest) buildBody(queryID string) ([]byte, error) {
	if r.method == "GET" {
		return nil, nil
	}
	payload := map[string]any{
		"variables": r.variables,
		"features":  r.features,
		"queryId":   queryID,
	}
	if r.fieldToggles != nil {
		payload["fieldToggles"] = r.fieldToggles
	}
	return json.Marshal(payload)
}

// send issues req once against queryID and classifies the outcome. The
// returned body is a well-formed JSON document without a top-level errors list.
func (c *Client) send(ctx context.Context, queryID string, req gqlRequest) ([]byte, error) {
	fail := func(kind error, status int, msg string, cause error) error {
		return &RequestError{Operation: req.operation, QueryID: queryID, Status: status, Message: msg, kind: kind, err: cause}
	}

	if c.limiter.IsRateLimited(req.operation) {
		until := c.limiter.AvailableAt(req.operation)
		return nil, fail(ErrRateLimited, 0, "rate limited until "+until.Format(time.RFC3339), nil)
	}

	if !c.cfg.DisableJitter {
		if err := stealth.DefaultJitter.Sleep(ctx); err != nil {
			return nil, err
		}
	}

	rawURL, err := req.buildURL(queryID)
	if err != nil {
		return nil, err
	}
	payload, err := req.buildBody(queryID)
	if err != nil {
		return nil, err
	}

	headers := twitterHeaders(c.session.Credentials(), c.cfg.UserAgent, c.clientUUID)
	body, respHdrs, status, err := c.roundTrip(ctx, req.method, rawURL, headers, payload)
	if err != nil {
		c.recordAPICall(req.operation, false, false)
		return nil, fail(ErrTransport, 0, "", err)
	}
	c.session.absorb(respHdrs)

	switch {
	case status == 404:
		c.recordAPICall(req.operation, false, false)
		return nil, fail(ErrStaleOperationID, status, "HTTP 404", nil)

	case status == 429:
		c.recordAPICall(req.operation, false, true)
		c.limiter.MarkRateLimited(req.operation, parseRateLimitReset(respHdrs["x-rate-limit-reset"]))
		return nil, fail(ErrRateLimited, status, fmt.Sprintf("HTTP %d: %s", status, truncateBytes(body, 200)), nil)

	case status < 200 || status > 299:
		c.recordAPICall(req.operation, false, false)
		if class := classifyError(body); class != errNone {
			slog.Warn("graphql request rejected",
				slog.String("operation", req.operation),
				slog.Int("status", status),
				slog.String("class", class.String()))
		}
		return nil, fail(ErrHTTPStatus, status, fmt.Sprintf("HTTP %d: %s", status, truncateBytes(body, 200)), nil)
	}

	if msg := platformErrorMessage(body); msg != "" {
		c.recordAPICall(req.operation, false, false)
		kind := ErrPlatformRejection
		if isVariableShapeMessage(msg) {
			kind = ErrVariableShape
		}
		if class := classifyError(body); class != errNone {
			slog.Warn("platform error", slog.String("operation", req.operation), slog.String("class", class.String()))
		}
		return nil, fail(kind, status, msg, nil)
	}
	if !gjson.ValidBytes(body) {
		c.recordAPICall(req.operation, false, false)
		return nil, fail(ErrPlatformRejection, status, "invalid JSON response: "+truncateBytes(body, 200), nil)
	}

	c.recordAPICall(req.operation, true, false)
	return body, nil
}

// fetchPage GETs a plain URL with session-less browser headers. Used for the
// home page and client bundles.
func (c *Client) fetchPage(ctx context.Context, rawURL string) ([]byte, error) {
	body, _, status, err := c.roundTrip(ctx, "GET", rawURL, pageHeaders(c.cfg.UserAgent), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if status != 200 {
		return nil, fmt.Errorf("%w: HTTP %d for %s", ErrHTTPStatus, status, rawURL)
	}
	return body, nil
}

// fetchAuthenticated GETs a non-GraphQL API URL with session headers.
func (c *Client) fetchAuthenticated(ctx context.Context, rawURL string) ([]byte, error) {
	headers := twitterHeaders(c.session.Credentials(), c.cfg.UserAgent, c.clientUUID)
	body, respHdrs, status, err := c.roundTrip(ctx, "GET", rawURL, headers, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	c.session.absorb(respHdrs)
	if status != 200 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrHTTPStatus, status, truncateBytes(body, 200))
	}
	return body, nil
}

type roundTripResult struct {
	body    []byte
	headers map[string]string
	status  int
	err     error
}

// roundTrip runs one HTTP exchange bounded by the configured timeout. The
// underlying client has no context support, so an abandoned exchange finishes
// in the background and its result is dropped.
func (c *Client) roundTrip(ctx context.Context, method, rawURL string, headers map[string]string, payload []byte) ([]byte, map[string]string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	done := make(chan roundTripResult, 1)
	go func() {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		b, h, s, err := c.doer.DoWithHeaderOrder(method, rawURL, headers, body, twitterHeaderOrder)
		done <- roundTripResult{body: b, headers: h, status: s, err: err}
	}()

	select {
	case r := <-done:
		return r.body, r.headers, r.status, r.err
	case <-ctx.Done():
		return nil, nil, 0, fmt.Errorf("%s %s: %w", method, redactURL(rawURL), ctx.Err())
	}
}

// redactURL strips the query string for log and error messages.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	return u.String()
}
