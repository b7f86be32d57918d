package game

import (
	"context"
	"fmt"
	"time"

	"github.com/playmatatu/minigolf/internal/config"
	"github.com/playmatatu/minigolf/internal/logger"
	"github.com/redis/go-redis/v9"
)

// StartIdleWorker starts a background worker that ends sessions nobody has
// played for cfg.SessionIdleSeconds. Activity is scheduled in a Redis
// sorted set; without Redis the worker scans the manager's own clocks.
func StartIdleWorker(ctx context.Context, m *SessionManager, rdb *redis.Client, cfg *config.Config) {
	log := logger.For("idle")
	if m == nil || cfg == nil || cfg.SessionIdleSeconds <= 0 {
		log.Warn().Msg("manager or config missing; idle worker not started")
		return
	}

	poll := time.Duration(cfg.IdleWorkerPollInterval) * time.Second
	if poll <= 0 {
		poll = 30 * time.Second
	}
	idleFor := time.Duration(cfg.SessionIdleSeconds) * time.Second

	log.Info().Dur("poll", poll).Dur("idle_after", idleFor).Bool("redis", rdb != nil).Msg("idle worker started")
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("idle worker stopping")
				return
			case now := <-ticker.C:
				cutoff := now.Add(-idleFor)
				var expired []string
				if rdb != nil {
					expired = expireFromRedis(ctx, m, rdb, cutoff)
				} else {
					expired = m.ExpireIdle(cutoff)
				}
				if len(expired) > 0 {
					log.Info().Int("count", len(expired)).Int("active", m.ActiveSessionCount()).Msg("idle sessions expired")
				}
			}
		}
	}()
}

// expireFromRedis pops every member scheduled before cutoff. Only the
// worker that wins the ZREM ends the session.
func expireFromRedis(ctx context.Context, m *SessionManager, rdb *redis.Client, cutoff time.Time) []string {
	log := logger.For("idle")
	members, err := rdb.ZRangeByScore(ctx, IdleSetKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", cutoff.Unix())}).Result()
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch idle sessions")
		return nil
	}

	var expired []string
	for _, token := range members {
		removed, err := rdb.ZRem(ctx, IdleSetKey, token).Result()
		if err != nil || removed == 0 {
			continue
		}
		if err := m.EndSession(token, StatusExpired); err != nil {
			log.Debug().Str("session", token).Err(err).Msg("idle member without live session")
			continue
		}
		log.Info().Str("session", token).Msg("session expired after inactivity")
		expired = append(expired, token)
	}
	return expired
}
