package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const presenceKeyPrefix = "presence:"

// PresenceStore keeps one sorted set per online user holding the instances
// that serve a stream for that user, scored by when each membership lapses.
// A user is online while any membership is live, so one instance going quiet
// never takes the user offline for the others.
type PresenceStore struct {
	client   *redis.Client
	ttl      time.Duration
	instance string
	now      func() time.Time
}

func NewPresenceStore(client *redis.Client, ttl time.Duration) *PresenceStore {
	return &PresenceStore{
		client:   client,
		ttl:      ttl,
		instance: uuid.NewString(),
		now:      time.Now,
	}
}

func presenceKey(userID uuid.UUID) string { return presenceKeyPrefix + userID.String() }

func scoreOf(t time.Time) string { return strconv.FormatInt(t.UnixMilli(), 10) }

// MarkOnline reports true only on the offline -> online transition across all
// instances. Calls for an already online user just extend this instance's membership.
func (p *PresenceStore) MarkOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	key := presenceKey(userID)
	now := p.now()

	var (
		added *redis.IntCmd
		card  *redis.IntCmd
	)
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", scoreOf(now))
		added = pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.Add(p.ttl).UnixMilli()), Member: p.instance})
		card = pipe.ZCard(ctx, key)
		pipe.PExpire(ctx, key, p.ttl)
		return nil
	})
	if err != nil {
		return false, err
	}

	return added.Val() == 1 && card.Val() == 1, nil
}

// MarkOffline drops this instance's membership and reports true only when no
// other instance still holds the user.
func (p *PresenceStore) MarkOffline(ctx context.Context, userID uuid.UUID) (bool, error) {
	key := presenceKey(userID)

	var (
		removed *redis.IntCmd
		card    *redis.IntCmd
	)
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.ZRem(ctx, key, p.instance)
		pipe.ZRemRangeByScore(ctx, key, "-inf", scoreOf(p.now()))
		card = pipe.ZCard(ctx, key)
		return nil
	})
	if err != nil {
		return false, err
	}

	return removed.Val() == 1 && card.Val() == 0, nil
}

func (p *PresenceStore) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := p.client.ZCount(ctx, presenceKey(userID), "("+scoreOf(p.now()), "+inf").Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
