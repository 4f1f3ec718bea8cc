package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"

	"membership-portal-backend/internal/config"
	"membership-portal-backend/internal/logger"
)

type allower interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

type ratePolicy struct {
	limit  redis_rate.Limit
	byUser bool // key by caller id instead of client address
}

// RateLimiter throttles login attempts per client address and payment intake
// per member, with counters kept in Redis so every replica shares them.
type RateLimiter struct {
	limiter  allower
	policies map[string]ratePolicy
	trusted  []netip.Prefix
}

// NewRateLimiter returns nil when no Redis address is configured, which
// disables limiting. X-Forwarded-For is only honored when the direct peer is
// one of the trusted proxies.
func NewRateLimiter(cfg config.RedisConfig, trusted []netip.Prefix) (*RateLimiter, *redis.Client) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newRateLimiter(redis_rate.NewLimiter(client), cfg, trusted), client
}

func newRateLimiter(limiter allower, cfg config.RedisConfig, trusted []netip.Prefix) *RateLimiter {
	policies := map[string]ratePolicy{}
	if cfg.LoginPerMinute > 0 {
		policies["Login"] = ratePolicy{limit: redis_rate.PerMinute(cfg.LoginPerMinute)}
		policies["Register"] = ratePolicy{limit: redis_rate.PerMinute(cfg.LoginPerMinute)}
	}
	if cfg.IntakePerHour > 0 {
		intake := ratePolicy{limit: redis_rate.PerHour(cfg.IntakePerHour), byUser: true}
		policies["CreateOrder"] = intake
		policies["VerifyPayment"] = intake
		policies["SubmitOfflinePayment"] = intake
		policies["UploadPaymentProof"] = intake
	}
	return &RateLimiter{limiter: limiter, policies: policies, trusted: trusted}
}

// Handler must run after the auth middleware so per-member keys see the actor.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	if rl == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := routeName(r)
		policy, ok := rl.policies[route]
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		key := "ratelimit:" + route + ":" + rl.subject(r, policy)
		res, err := rl.limiter.Allow(r.Context(), key, policy.limit)
		if err != nil {
			// Fail open: an unavailable Redis must not take the API down
			logger.WarnContext(r.Context(), "Rate limiter unavailable", "route", route, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(policy.limit.Rate))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if res.Allowed == 0 {
			retry := int(res.RetryAfter.Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			writeJSON(w, http.StatusTooManyRequests, errorBody{
				Error: fmt.Sprintf("rate limit exceeded, retry in %d seconds", retry),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) subject(r *http.Request, policy ratePolicy) string {
	if policy.byUser {
		if actor := ActorFromContext(r.Context()); actor.UserID != 0 {
			return "user:" + strconv.Itoa(int(actor.UserID))
		}
	}
	return "ip:" + rl.clientIP(r)
}

// clientIP walks X-Forwarded-For from the right, past trusted hops, and
// stops at the first address it cannot vouch for. Untrusted peers get their
// socket address regardless of headers.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !rl.isTrusted(host) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !rl.isTrusted(hop) {
			return hop
		}
		host = hop
	}
	return host
}

func (rl *RateLimiter) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range rl.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
