package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"movie-finder-service/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var _ Documents = (*RedisDocuments)(nil)

const (
	redisDocKeyPrefix  = "trending:doc:"
	redisTermKeyPrefix = "trending:term:"
	redisCountsKey     = "trending:counts"
)

// RedisDocuments stores each record as a hash, indexed by term and ranked in a sorted set
type RedisDocuments struct {
	client *redis.Client
}

// NewRedisDocuments connects to redisURL
func NewRedisDocuments(ctx context.Context, redisURL string) (*RedisDocuments, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	// 只记录地址，不记录完整 URL（可能包含密码）
	log.Info().Str("addr", opt.Addr).Msg("✅ Redis connected")

	return &RedisDocuments{client: client}, nil
}

func (r *RedisDocuments) FindByTerm(ctx context.Context, term string) ([]model.TrendingRecord, error) {
	ids, err := r.client.SMembers(ctx, redisTermKeyPrefix+term).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers error: %w", err)
	}
	records, err := r.load(ctx, ids)
	if err != nil {
		return nil, err
	}

	// set 无序，按创建时间排，和 SQL 后端的 ORDER BY created_at 一致
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

func (r *RedisDocuments) Create(ctx context.Context, rec model.TrendingRecord) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisDocKeyPrefix+rec.ID, map[string]interface{}{
			"search_term": rec.SearchTerm,
			"count":       rec.Count,
			"movie_id":    rec.MovieID,
			"poster_url":  rec.PosterURL,
			"created_at":  rec.CreatedAt.UnixNano(),
			"updated_at":  rec.UpdatedAt.UnixNano(),
		})
		pipe.SAdd(ctx, redisTermKeyPrefix+rec.SearchTerm, rec.ID)
		pipe.ZAdd(ctx, redisCountsKey, redis.Z{Score: float64(rec.Count), Member: rec.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis create error: %w", err)
	}
	return nil
}

func (r *RedisDocuments) UpdateCount(ctx context.Context, id string, count int) error {
	exists, err := r.client.Exists(ctx, redisDocKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("redis exists error: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisDocKeyPrefix+id, "count", count, "updated_at", time.Now().UTC().UnixNano())
		pipe.ZAdd(ctx, redisCountsKey, redis.Z{Score: float64(count), Member: id})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis update error: %w", err)
	}
	return nil
}

func (r *RedisDocuments) ListTop(ctx context.Context, limit int) ([]model.TrendingRecord, error) {
	ids, err := r.client.ZRevRange(ctx, redisCountsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange error: %w", err)
	}
	return r.load(ctx, ids)
}

// load reads the hashes for ids, keeping their order
func (r *RedisDocuments) load(ctx context.Context, ids []string) ([]model.TrendingRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, redisDocKeyPrefix+id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis hgetall error: %w", err)
	}

	records := make([]model.TrendingRecord, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}

		count, _ := strconv.Atoi(fields["count"])
		movieID, _ := strconv.Atoi(fields["movie_id"])
		createdAt, _ := strconv.ParseInt(fields["created_at"], 10, 64)
		updatedAt, _ := strconv.ParseInt(fields["updated_at"], 10, 64)

		records = append(records, model.TrendingRecord{
			ID:         ids[i],
			SearchTerm: fields["search_term"],
			Count:      count,
			MovieID:    movieID,
			PosterURL:  fields["poster_url"],
			CreatedAt:  time.Unix(0, createdAt).UTC(),
			UpdatedAt:  time.Unix(0, updatedAt).UTC(),
		})
	}
	return records, nil
}

// Close closes the Redis connection
func (r *RedisDocuments) Close() error {
	return r.client.Close()
}
