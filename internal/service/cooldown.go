package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/repository"
)

// reservationTTL bounds how long a submission may hold the per-member
// reservation before it self-expires (covers crashed handlers).
const reservationTTL = 30 * time.Second

// CooldownDecision is the outcome of a cooldown check.
type CooldownDecision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// CooldownGate enforces the per-member minimum interval between
// submissions. The elapsed-time check reads the authoritative store,
// never client state; the Redis reservation closes the narrow race
// where two concurrent submissions from the same member both observe
// "allowed" before either insert lands.
type CooldownGate struct {
	grievances repository.GrievanceRepository
	redis      *redis.Client
	window     time.Duration
	logger     *zap.Logger
}

// NewCooldownGate constructs the gate. redisClient may be nil, in
// which case only the store-derived check applies.
func NewCooldownGate(grievances repository.GrievanceRepository, redisClient *redis.Client, window time.Duration, logger *zap.Logger) *CooldownGate {
	return &CooldownGate{
		grievances: grievances,
		redis:      redisClient,
		window:     window,
		logger:     logger,
	}
}

// CheckAndReserve decides whether the member may submit now. A member
// with no prior grievances is always allowed; exactly one full window
// elapsed is allowed (inclusive boundary). On Allowed the gate holds a
// short-lived reservation that the caller must Release if the insert
// does not go through.
func (g *CooldownGate) CheckAndReserve(ctx context.Context, memberID string, now time.Time) (CooldownDecision, error) {
	latest, err := g.grievances.LatestForMember(ctx, memberID)
	if err != nil {
		return CooldownDecision{}, err
	}
	if latest != nil {
		elapsed := now.Sub(latest.SubmittedAt)
		if elapsed < g.window {
			return CooldownDecision{Allowed: false, RetryAfter: g.window - elapsed}, nil
		}
	}

	if g.redis != nil {
		ok, err := g.redis.SetNX(ctx, reservationKey(memberID), 1, reservationTTL).Result()
		if err != nil {
			// Redis being down must not block submissions; the store
			// check above remains the primary control.
			g.logger.Warn("cooldown reservation unavailable", zap.Error(err))
		} else if !ok {
			return CooldownDecision{Allowed: false, RetryAfter: reservationTTL}, nil
		}
	}

	return CooldownDecision{Allowed: true}, nil
}

// Release frees the reservation after a failed insert so the member
// can retry immediately.
func (g *CooldownGate) Release(ctx context.Context, memberID string) {
	if g.redis == nil {
		return
	}
	if err := g.redis.Del(ctx, reservationKey(memberID)).Err(); err != nil {
		g.logger.Warn("cooldown reservation release failed", zap.Error(err))
	}
}

func reservationKey(memberID string) string {
	return "cooldown:reserve:" + memberID
}
