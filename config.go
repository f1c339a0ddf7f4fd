package twitter

import (
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// NoQuotedTweets is the QuoteDepth that leaves QuotedTweet nil everywhere.
const NoQuotedTweets = -1

// ClientConfig holds all configuration for the client.
type ClientConfig struct {
	// Credentials is the session cookie bundle. AuthToken and CT0 are required.
	Credentials Credentials

	// Timeout bounds each HTTP attempt independently. Default: 30s.
	Timeout time.Duration

	// QuoteDepth is how many levels of quoted tweets are mapped.
	// Zero is "unset" and means 1. Use NoQuotedTweets to map none.
	QuoteDepth int

	// Proxy is an optional proxy URL for all requests.
	Proxy string

	// UserAgent overrides the browser User-Agent. When empty, the User-Agent
	// of built-in browser profile ProfileIndex is used.
	UserAgent string

	// ProfileIndex picks a go-stealth built-in browser profile (modulo the
	// number of profiles).
	ProfileIndex int

	// DisableJitter turns off the anti-fingerprint delay before each request.
	DisableJitter bool

	// RateLimit configures per-operation rate limiting after a 429.
	RateLimit ratelimit.Config

	// MetricsHook is called on each API request for external metrics collection.
	// operation is the GraphQL operation name, success and rateLimited indicate the outcome.
	MetricsHook func(operation string, success, rateLimited bool)

	// RegistryCachePath is an optional YAML file the operation registry loads
	// on first use and rewrites after every successful refresh.
	RegistryCachePath string

	// BundleScriptLimit caps how many client bundle scripts a refresh scans. Default: 12.
	BundleScriptLimit int

	// BundleFetchAttempts is the number of tries per bundle fetch. Default: 3.
	BundleFetchAttempts int

	// BundleBackoff spaces bundle fetch retries.
	BundleBackoff stealth.BackoffConfig

	// Doer replaces the browser-fingerprinted HTTP client. Intended for tests.
	Doer Doer
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *ClientConfig) defaults() {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.QuoteDepth == 0 {
		cfg.QuoteDepth = 1
	}
	if cfg.QuoteDepth < 0 {
		cfg.QuoteDepth = 0
	}
	if cfg.UserAgent == "" && len(stealth.BuiltinProfiles) > 0 {
		n := len(stealth.BuiltinProfiles)
		cfg.UserAgent = stealth.BuiltinProfiles[((cfg.ProfileIndex%n)+n)%n].UserAgent
	}
	if cfg.RateLimit.RequestsPerWindow == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig
	}
	if cfg.BundleScriptLimit == 0 {
		cfg.BundleScriptLimit = 12
	}
	if cfg.BundleFetchAttempts == 0 {
		cfg.BundleFetchAttempts = 3
	}
	if cfg.BundleBackoff.InitialWait == 0 {
		cfg.BundleBackoff = stealth.BackoffConfig{
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
			JitterPct:   0.3,
		}
	}
}
