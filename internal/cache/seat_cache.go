package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

type Config struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	SeatTTL  time.Duration
}

// minGenerationTTL bounds how long a show's generation counter outlives its
// last invalidation. It must stay above the seat TTL so a reset counter never
// meets an entry written under the old value.
const defaultSeatTTL = 30 * time.Second

const minGenerationTTL = 24 * time.Hour

// SeatCache keeps serialized hall seat maps, one key per hall. Keys carry the
// show's generation counter, so bumping the counter on any seat mutation hides
// every hall of the show at once and a fill that started before the bump can
// never be read back.
type SeatCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSeatCache(cfg Config) (*SeatCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewSeatCacheWithClient(rdb, cfg.SeatTTL), nil
}

func NewSeatCacheWithClient(client *redis.Client, ttl time.Duration) *SeatCache {
	if ttl <= 0 {
		ttl = defaultSeatTTL
	}
	return &SeatCache{client: client, ttl: ttl}
}

func generationKey(showID string) string {
	return "seats:show:" + showID + ":gen"
}

func hallKey(showID string, generation int64, cinemaID, hallName string) string {
	return fmt.Sprintf("seats:show:%s:v%d:%s:%s", showID, generation, cinemaID, hallName)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, cmd getter, showID string) (int64, error) {
	gen, err := cmd.Get(ctx, generationKey(showID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetHallSeatsRaw returns the cached JSON for a hall. On ErrCacheMiss the
// returned generation must be handed to SetHallSeats after loading the seats.
func (c *SeatCache) GetHallSeatsRaw(ctx context.Context, cinemaID, showID, hallName string) ([]byte, int64, error) {
	gen, err := readGeneration(ctx, c.client, showID)
	if err != nil {
		return nil, 0, fmt.Errorf("cache lookup error: %w", err)
	}

	raw, err := c.client.Get(ctx, hallKey(showID, gen, cinemaID, hallName)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, gen, ErrCacheMiss
		}
		return nil, gen, fmt.Errorf("cache lookup error: %w", err)
	}
	return raw, gen, nil
}

// SetHallSeats stores value for the hall unless the show was invalidated
// after generation was read. A skipped write is not an error.
func (c *SeatCache) SetHallSeats(ctx context.Context, generation int64, cinemaID, showID, hallName string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, showID)
		if err != nil {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, hallKey(showID, generation, cinemaID, hallName), data, c.ttl)
			return nil
		})
		return err
	}, generationKey(showID))

	if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

var errStaleGeneration = errors.New("show generation changed")

// InvalidateShow hides every cached hall of the show by bumping its
// generation. Old entries expire on their own TTL.
func (c *SeatCache) InvalidateShow(ctx context.Context, showID string) error {
	key := generationKey(showID)
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, max(minGenerationTTL, 2*c.ttl))
	_, err := pipe.Exec(ctx)
	return err
}

func (c *SeatCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *SeatCache) Close() error {
	return c.client.Close()
}
