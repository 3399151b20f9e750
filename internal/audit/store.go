// Package audit persists workflow audit events in redis, outside the
// relational request store. The log is append-only and eventually
// consistent with the request store; it is the query surface for
// cross-cutting reporting, never the source of truth for current status.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"aprobaciones/internal/model"

	"github.com/redis/go-redis/v9"
)

// Key layout. Every event document is stored once and referenced from the
// sorted-set indexes by sequence id, scored by CreatedAt so range queries
// map to ZRANGEBYSCORE.
const (
	seqKey       = "audit:seq"
	eventKey     = "audit:event:%d"
	byTimeKey    = "audit:events"
	byActorKey   = "audit:actor:%d"
	byActionKey  = "audit:action:%s"
	byRequestKey = "audit:request:%d"
)

// QueryFilter narrows event queries. Zero values mean "no filter". From/To
// bound CreatedAt inclusively.
type QueryFilter struct {
	ActorID *uint
	Action  string
	From    *time.Time
	To      *time.Time
}

// Store is the append/query contract for the audit event log.
type Store interface {
	Append(ctx context.Context, event *model.AuditEvent) error
	// Query returns matching events newest first.
	Query(ctx context.Context, filter QueryFilter) ([]model.AuditEvent, error)
	// ByRequest returns one request's events oldest first, reconstructing
	// its narrative independently of the relational history table.
	ByRequest(ctx context.Context, requestID uint) ([]model.AuditEvent, error)
}

// Open connects to redis and verifies the connection with a bounded ping.
func Open(addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore returns a redis-backed Store.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Append(ctx context.Context, event *model.AuditEvent) error {
	id, err := s.client.Incr(ctx, seqKey).Result()
	if err != nil {
		return fmt.Errorf("audit: next sequence: %w", err)
	}
	event.ID = id
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	doc, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("audit: marshal event: %w", err)
	}

	score := float64(event.CreatedAt.UnixNano())
	member := redis.Z{Score: score, Member: id}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(eventKey, id), doc, 0)
	pipe.ZAdd(ctx, byTimeKey, member)
	pipe.ZAdd(ctx, fmt.Sprintf(byActorKey, event.ActorID), member)
	pipe.ZAdd(ctx, fmt.Sprintf(byActionKey, event.Action), member)
	pipe.ZAdd(ctx, fmt.Sprintf(byRequestKey, event.RequestID), member)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("audit: append event: %w", err)
	}
	return nil
}

func (s *redisStore) Query(ctx context.Context, filter QueryFilter) ([]model.AuditEvent, error) {
	// Pick the narrowest index; leftover predicates are applied on the
	// decoded documents.
	index := byTimeKey
	switch {
	case filter.ActorID != nil:
		index = fmt.Sprintf(byActorKey, *filter.ActorID)
	case filter.Action != "":
		index = fmt.Sprintf(byActionKey, filter.Action)
	}

	min, max := "-inf", "+inf"
	if filter.From != nil {
		min = strconv.FormatInt(filter.From.UnixNano(), 10)
	}
	if filter.To != nil {
		max = strconv.FormatInt(filter.To.UnixNano(), 10)
	}

	ids, err := s.client.ZRevRangeByScore(ctx, index, &redis.ZRangeBy{Min: min, Max: max}).Result()
	if err != nil {
		return nil, fmt.Errorf("audit: range query: %w", err)
	}

	events, err := s.fetch(ctx, ids)
	if err != nil {
		return nil, err
	}

	filtered := events[:0]
	for _, ev := range events {
		if filter.Action != "" && ev.Action != filter.Action {
			continue
		}
		if filter.ActorID != nil && ev.ActorID != *filter.ActorID {
			continue
		}
		filtered = append(filtered, ev)
	}
	return filtered, nil
}

func (s *redisStore) ByRequest(ctx context.Context, requestID uint) ([]model.AuditEvent, error) {
	ids, err := s.client.ZRangeByScore(ctx, fmt.Sprintf(byRequestKey, requestID), &redis.ZRangeBy{Min: "-inf", Max: "+inf"}).Result()
	if err != nil {
		return nil, fmt.Errorf("audit: request events: %w", err)
	}
	return s.fetch(ctx, ids)
}

// fetch loads event documents by id, preserving the order of ids. Dangling
// index members (document expired or lost) are skipped.
func (s *redisStore) fetch(ctx context.Context, ids []string) ([]model.AuditEvent, error) {
	if len(ids) == 0 {
		return []model.AuditEvent{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		keys = append(keys, fmt.Sprintf(eventKey, n))
	}

	docs, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("audit: load events: %w", err)
	}

	events := make([]model.AuditEvent, 0, len(docs))
	for _, doc := range docs {
		raw, ok := doc.(string)
		if !ok {
			continue
		}
		var ev model.AuditEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, fmt.Errorf("audit: decode event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}
