package utils

import (
	"time"
)

// Request tracking constants
const (
	// RequestIDKey is the context key carrying the inbound request ID
	RequestIDKey = "X-Request-ID"

	// UserAgentKey is the context key carrying the caller's user agent
	UserAgentKey = "User-Agent"

	// IPAddressKey is the context key carrying the caller's IP address
	IPAddressKey = "IP-Address"

	// EndpointKey is the context key carrying the matched endpoint path
	EndpointKey = "Endpoint"

	// CancelFuncKey is the context key carrying the request cancel function
	CancelFuncKey = "Cancel-Func"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// AccessTokenTTLSeconds is the time-to-live for access tokens in seconds
	AccessTokenTTLSeconds = 86400
)

// Recipient cap constants per owner scope (tier caps)
const (
	// PlatformRecipientCap is the maximum resolved audience for platform-scoped campaigns
	PlatformRecipientCap = 10000

	// CompanyRecipientCap is the maximum resolved audience for company-scoped campaigns
	CompanyRecipientCap = 1000
)

// Scheduling constants
const (
	// DefaultSweepInterval is how often the scheduler looks for due campaigns
	DefaultSweepInterval = 30 * time.Second

	// DefaultStaleSendingTimeout is how long a campaign may sit in sending
	// before the sweep force-fails it (crash recovery)
	DefaultStaleSendingTimeout = 30 * time.Minute
)

// Dispatch constants
const (
	// DefaultDispatchConcurrency bounds the per-campaign send worker pool
	DefaultDispatchConcurrency = 8

	// PreviewCacheTTL is how long audience preview counts are cached
	PreviewCacheTTL = 30 * time.Second
)
