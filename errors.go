package twitter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Failure kinds. A *RequestError always wraps exactly one of these, so callers
// can branch with errors.Is.
var (
	// ErrTransport covers connection failures and per-attempt timeouts.
	ErrTransport = errors.New("transport failure")
	// ErrStaleOperationID means the platform answered 404 for an operation ID.
	ErrStaleOperationID = errors.New("stale operation id")
	// ErrHTTPStatus is any non-2xx status other than 404.
	ErrHTTPStatus = errors.New("unexpected http status")
	// ErrPlatformRejection is a 2xx body carrying a top-level errors list,
	// or a body that is not JSON at all.
	ErrPlatformRejection = errors.New("platform rejected request")
	// ErrVariableShape is a rejection naming one of the request variables.
	ErrVariableShape = fmt.Errorf("variable shape rejected: %w", ErrPlatformRejection)
	// ErrRateLimited is a 429, or a request refused locally because the
	// operation is still inside a 429 window.
	ErrRateLimited = fmt.Errorf("rate limited: %w", ErrHTTPStatus)
	// ErrNotFound means the response parsed but the requested record was absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned before any request is made.
	ErrInvalidInput = errors.New("invalid input")
)

// RequestError describes one failed GraphQL request.
type RequestError struct {
	Operation string
	QueryID   string
	Status    int
	Message   string

	kind error
	err  error
}

func (e *RequestError) Error() string {
	return e.Operation + ": " + e.messageText()
}

// messageText is the human-readable part of the error, without the operation.
func (e *RequestError) messageText() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	}
	return "request failed"
}

// Unwrap exposes both the failure kind and the underlying cause.
func (e *RequestError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.err != nil {
		errs = append(errs, e.err)
	}
	return errs
}

// isStale reports whether err is a 404 on an operation ID.
func isStale(err error) bool { return errors.Is(err, ErrStaleOperationID) }

// isTransport reports whether err is a connection-level failure.
func isTransport(err error) bool { return errors.Is(err, ErrTransport) }

// errorClass categorizes platform error codes for log and message hints.
type errorClass int

const (
	errNone          errorClass = iota
	errRateAbuse                // 88
	errSuspended                // 64
	errLocked                   // 326
	errCSRF                     // 353
	errAuthExpired              // 32
	errBlocked                  // 161
	errNotAuthorized            // 179, 219
	errInternal                 // 131
)

func (c errorClass) String() string {
	switch c {
	case errRateAbuse:
		return "rate limit exceeded"
	case errSuspended:
		return "account suspended"
	case errLocked:
		return "account locked"
	case errCSRF:
		return "csrf token mismatch"
	case errAuthExpired:
		return "session cookies rejected"
	case errBlocked:
		return "blocked from action"
	case errNotAuthorized:
		return "not authorized"
	case errInternal:
		return "platform internal error"
	}
	return ""
}

// classifyError inspects a response body for known platform error codes.
func classifyError(body []byte) errorClass {
	for _, code := range gjson.GetBytes(body, "errors.#.code").Array() {
		switch code.Int() {
		case 88:
			return errRateAbuse
		case 64:
			return errSuspended
		case 326:
			return errLocked
		case 353:
			return errCSRF
		case 32:
			return errAuthExpired
		case 161:
			return errBlocked
		case 179, 219:
			return errNotAuthorized
		case 131:
			return errInternal
		}
	}
	return errNone
}

// platformErrorMessage joins the messages of a top-level errors list.
// Returns "" when the list is absent or empty.
func platformErrorMessage(body []byte) string {
	list := gjson.GetBytes(body, "errors")
	if !list.IsArray() || len(list.Array()) == 0 {
		return ""
	}
	var msgs []string
	for _, e := range list.Array() {
		if m := e.Get("message").String(); m != "" {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		return "unknown platform error"
	}
	return strings.Join(msgs, ", ")
}

// isVariableShapeMessage matches rejections such as
// `Variable "$count" is not defined by operation`.
func isVariableShapeMessage(msg string) bool {
	return strings.Contains(msg, `Variable "$`)
}

// parseRateLimitReset parses the X-Rate-Limit-Reset unix timestamp header.
// Falls back to 15 minutes from now if missing or invalid.
func parseRateLimitReset(v string) time.Time {
	if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(ts, 0)
	}
	return time.Now().Add(15 * time.Minute)
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
