package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/faktura/internal/config"
)

const keyAPIOrg = "faktura:api:org:%s"

// APILimiter throttles the HTTP API per organization. A nil limiter is
// valid and allows everything, so deployments without redis need no wiring.
type APILimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewAPILimiter(cfg config.Config, client *redis.Client) (*APILimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}
	if client == nil {
		return nil, errors.New("rate limit requires a redis client")
	}
	if limitCfg.APIRate <= 0 || limitCfg.APIBurst <= 0 {
		return nil, errors.New("api rate limit must be positive")
	}

	return &APILimiter{
		bucket: NewTokenBucket(client),
		rate:   limitCfg.APIRate,
		burst:  limitCfg.APIBurst,
	}, nil
}

func (l *APILimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// AllowOrg consumes one request token for the org. Redis trouble fails open:
// the caller gets true plus the error to log.
func (l *APILimiter) AllowOrg(ctx context.Context, orgID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	allowed, err := l.bucket.Allow(ctx, fmt.Sprintf(keyAPIOrg, strings.TrimSpace(orgID)), l.rate, l.burst)
	if err != nil {
		return true, err
	}
	return allowed, nil
}
