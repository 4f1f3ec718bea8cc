package http

// NewRateLimiterWith builds a RateLimiter over any limiter backend.
var NewRateLimiterWith = newRateLimiter
